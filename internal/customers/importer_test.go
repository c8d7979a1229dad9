package customers

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routedesk/routedesk/internal/platform/httpx"
)

func newImporter(repo *fakeCustomerRepo) *Importer {
	return NewImporter(repo, newFakeRegistry(), slog.Default())
}

func TestImportEmptyFile(t *testing.T) {
	repo := newFakeCustomerRepo()
	_, err := newImporter(repo).Import(context.Background(), strings.NewReader(""))
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestImportHeaderOnly(t *testing.T) {
	repo := newFakeCustomerRepo()
	csv := "Name,Route,SalesExecutive,GreenPrice,OrangePrice,Phone\n"
	_, err := newImporter(repo).Import(context.Background(), strings.NewReader(csv))
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestImportWrongHeader(t *testing.T) {
	repo := newFakeCustomerRepo()
	csv := "name,route,exec,std,prem,phone\nAcme,NORTH LOOP,Ravi Kumar,40,55,\n"
	_, err := newImporter(repo).Import(context.Background(), strings.NewReader(csv))
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.created)
}

func TestImportUnknownRouteAbortsBatch(t *testing.T) {
	repo := newFakeCustomerRepo()
	csv := "Name,Route,SalesExecutive,GreenPrice,OrangePrice,Phone\n" +
		"Fresh Mart,NORTH LOOP,Ravi Kumar,40,55,555-0100\n" +
		"Corner Shop,NOWHERE,Ravi Kumar,40,55,\n"
	_, err := newImporter(repo).Import(context.Background(), strings.NewReader(csv))
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Contains(t, err.Error(), "NOWHERE")
	require.Empty(t, repo.created, "a bad route set must write nothing")
}

func TestImportInactiveRouteAbortsBatch(t *testing.T) {
	repo := newFakeCustomerRepo()
	csv := "Name,Route,SalesExecutive,GreenPrice,OrangePrice,Phone\n" +
		"Fresh Mart,OLD MILL,Ravi Kumar,40,55,\n"
	_, err := newImporter(repo).Import(context.Background(), strings.NewReader(csv))
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.created)
}

func TestImportRowFailuresDoNotAbort(t *testing.T) {
	repo := newFakeCustomerRepo()
	lines := []string{"Name,Route,SalesExecutive,GreenPrice,OrangePrice,Phone"}
	for i := 0; i < 9; i++ {
		lines = append(lines, "Shop "+string(rune('A'+i))+",NORTH LOOP,Ravi Kumar,40,55,555-0100")
	}
	lines = append(lines, ",NORTH LOOP,Ravi Kumar,40,55,") // missing name, row 10
	csv := strings.Join(lines, "\n") + "\n"

	summary, err := newImporter(repo).Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 9, summary.Imported+summary.Updated)
	require.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	require.Equal(t, 10, summary.Errors[0].Row)
}

func TestImportUpsertsExistingByName(t *testing.T) {
	repo := newFakeCustomerRepo()
	seedCustomer(repo) // "Acme Traders"

	csv := "Name,Route,SalesExecutive,GreenPrice,OrangePrice,Phone\n" +
		"ACME TRADERS,NORTH LOOP,Ravi Kumar,44,60,555-0199\n" +
		"Fresh Mart,NORTH LOOP,Ravi Kumar,35,50,\n"
	summary, err := newImporter(repo).Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, summary.Updated)
	require.Equal(t, 1, summary.Imported)
	require.Zero(t, summary.Failed)
	require.NotEmpty(t, summary.BatchID)

	require.Equal(t, int64(7), repo.updatedID)
	require.Equal(t, 44.0, repo.updates["standard_price"])
	require.Equal(t, 60.0, repo.updates["premium_price"])
	require.Equal(t, "ravi", repo.updates["sales_executive"])
}

func TestImportDuplicateRowInFile(t *testing.T) {
	repo := newFakeCustomerRepo()
	csv := "Name,Route,SalesExecutive,GreenPrice,OrangePrice,Phone\n" +
		"Fresh Mart,NORTH LOOP,Ravi Kumar,35,50,\n" +
		"FRESH MART,NORTH LOOP,Ravi Kumar,36,51,\n"
	summary, err := newImporter(repo).Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, summary.Imported)
	require.Equal(t, 1, summary.Failed)
	require.Contains(t, summary.Errors[0].Message, "duplicate")
}

func TestImportUnresolvableExecutiveFailsRowOnly(t *testing.T) {
	repo := newFakeCustomerRepo()
	csv := "Name,Route,SalesExecutive,GreenPrice,OrangePrice,Phone\n" +
		"Fresh Mart,NORTH LOOP,Nobody Home,35,50,\n" +
		"Corner Shop,NORTH LOOP,Ravi Kumar,35,50,\n"
	summary, err := newImporter(repo).Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, summary.Imported)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, 1, summary.Errors[0].Row)
	require.Equal(t, "Fresh Mart", summary.Errors[0].Name)
}

func TestImportPriceParsing(t *testing.T) {
	repo := newFakeCustomerRepo()
	csv := "Name,Route,SalesExecutive,GreenPrice,OrangePrice,Phone\n" +
		"Fresh Mart,NORTH LOOP,Ravi Kumar,\"$1,250.50\",₹ 35.00,\n"
	summary, err := newImporter(repo).Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, summary.Imported)
	require.Equal(t, 1250.50, repo.created[0].StandardPrice)
	require.Equal(t, 35.0, repo.created[0].PremiumPrice)
}

func TestImportNegativePriceFailsRow(t *testing.T) {
	repo := newFakeCustomerRepo()
	csv := "Name,Route,SalesExecutive,GreenPrice,OrangePrice,Phone\n" +
		"Fresh Mart,NORTH LOOP,Ravi Kumar,-5,50,\n"
	summary, err := newImporter(repo).Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, summary.Failed)
	require.Contains(t, summary.Errors[0].Message, "GreenPrice")
	require.Empty(t, repo.created)
}

func TestImportErrorListCappedAtTen(t *testing.T) {
	repo := newFakeCustomerRepo()
	lines := []string{"Name,Route,SalesExecutive,GreenPrice,OrangePrice,Phone"}
	for i := 0; i < 15; i++ {
		lines = append(lines, ",NORTH LOOP,Ravi Kumar,40,55,")
	}
	csv := strings.Join(lines, "\n") + "\n"

	summary, err := newImporter(repo).Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 15, summary.Failed)
	require.Len(t, summary.Errors, 10)
}
