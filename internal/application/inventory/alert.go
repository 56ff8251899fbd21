package inventory

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// UnknownCategory se muestra cuando la categoría del producto no se pudo resolver.
const UnknownCategory = "N/A"

// LowStockAlert contenido de una alerta de stock bajo para un producto.
type LowStockAlert struct {
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	CategoryName    string `json:"category_name"`
	Quantity        int64  `json:"quantity"`
	QuantityMinimum int64  `json:"quantity_minimum"`
}

// NewLowStockAlert construye la alerta desde la fila cruda del repositorio.
func NewLowStockAlert(item repository.LowStockItem) LowStockAlert {
	category := item.CategoryName
	if category == "" {
		category = UnknownCategory
	}
	return LowStockAlert{
		ProductID:       item.ProductID,
		ProductName:     item.ProductName,
		CategoryName:    category,
		Quantity:        item.Quantity,
		QuantityMinimum: item.QuantityMinimum,
	}
}

// Subject asunto del correo de alerta.
func (a LowStockAlert) Subject() string {
	return fmt.Sprintf("ALERTA: Estoque baixo do produto %s", a.ProductName)
}

var alertTemplate = template.Must(template.New("low_stock").Parse(`<html>
<body>
<h2>Alerta de estoque baixo</h2>
<p>O produto abaixo está com a quantidade abaixo do mínimo definido:</p>
<ul>
<li><strong>ID:</strong> {{.ProductID}}</li>
<li><strong>Nome:</strong> {{.ProductName}}</li>
<li><strong>Categoria:</strong> {{.CategoryName}}</li>
<li><strong>Quantidade Atual:</strong> {{.Quantity}}</li>
<li><strong>Quantidade Mínima:</strong> {{.QuantityMinimum}}</li>
</ul>
<p>Providencie a reposição do estoque.</p>
</body>
</html>`))

// HTMLBody cuerpo HTML del correo; los valores se escapan.
func (a LowStockAlert) HTMLBody() (string, error) {
	var buf bytes.Buffer
	if err := alertTemplate.Execute(&buf, a); err != nil {
		return "", fmt.Errorf("render alerta: %w", err)
	}
	return buf.String(), nil
}
