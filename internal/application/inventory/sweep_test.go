package inventory_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

func TestSweepAndNotify_UnaAlertaPorProductoBajo(t *testing.T) {
	store := newMemStore()
	store.addProduct("a", "Caneta", "cat-1", 1, 5)
	store.addProduct("b", "Lápis", "cat-x", 2, 3)
	store.addProduct("c", "Borracha", "cat-1", 9, 5) // sobre el mínimo
	store.addProduct("d", "Régua", "cat-1", 5, 5)    // igual al mínimo no alerta
	store.categories["cat-1"] = "Papelaria"
	notifier := &fakeNotifier{}

	uc := inventory.NewLowStockSweepUseCase(productRepo{store}, notifier, 0, nil)
	report, err := uc.SweepAndNotify(context.Background(), testEmail)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Found)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, notifier.sent, 2)

	byID := map[string]sentAlert{}
	for _, s := range notifier.sent {
		byID[s.alert.ProductID] = s
		assert.Equal(t, testEmail, s.recipient)
		assert.True(t, s.deadline, "cada envío lleva timeout")
	}
	assert.Equal(t, "Papelaria", byID["a"].alert.CategoryName)
	assert.Equal(t, inventory.UnknownCategory, byID["b"].alert.CategoryName, "categoría no resuelta usa N/A")
}

func TestSweepAndNotify_FalloDeEnvio_Continua(t *testing.T) {
	store := newMemStore()
	store.addProduct("a", "Caneta", "cat-1", 1, 5)
	store.addProduct("b", "Lápis", "cat-1", 2, 5)
	notifier := &fakeNotifier{failOn: map[string]error{"a": errors.New("smtp caído")}}

	uc := inventory.NewLowStockSweepUseCase(productRepo{store}, notifier, 0, nil)
	report, err := uc.SweepAndNotify(context.Background(), testEmail)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Found)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "b", notifier.sent[0].alert.ProductID)
}

func TestSweepAndNotify_FalloDeConsulta_Aborta(t *testing.T) {
	store := newMemStore()
	store.failListLow = errors.New("timeout")
	notifier := &fakeNotifier{}

	uc := inventory.NewLowStockSweepUseCase(productRepo{store}, notifier, 0, nil)
	report, err := uc.SweepAndNotify(context.Background(), testEmail)

	assert.Error(t, err)
	assert.Nil(t, report)
	assert.Equal(t, 0, notifier.count())
}

func TestSweepAndNotify_SinDeduplicacion(t *testing.T) {
	store := newMemStore()
	store.addProduct("a", "Caneta", "cat-1", 1, 5)
	notifier := &fakeNotifier{}
	uc := inventory.NewLowStockSweepUseCase(productRepo{store}, notifier, 0, nil)

	for i := 0; i < 3; i++ {
		_, err := uc.SweepAndNotify(context.Background(), testEmail)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, notifier.count(), "cada revisión vuelve a notificar")
}

func TestLowStockAlert_AsuntoYCuerpo(t *testing.T) {
	alert := inventory.NewLowStockAlert(repository.LowStockItem{
		ProductID: "p-9", ProductName: "Café <Premium>", Quantity: 2, QuantityMinimum: 5,
	})

	assert.Equal(t, "ALERTA: Estoque baixo do produto Café <Premium>", alert.Subject())

	body, err := alert.HTMLBody()
	require.NoError(t, err)
	assert.Contains(t, body, "p-9")
	assert.Contains(t, body, "Café &lt;Premium&gt;", "el nombre se escapa en HTML")
	assert.Contains(t, body, "Quantidade Atual:</strong> 2")
	assert.Contains(t, body, "Quantidade Mínima:</strong> 5")
	assert.True(t, strings.Contains(body, "N/A"))
}
