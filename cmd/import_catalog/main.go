// import_catalog carga categorías y productos desde un CSV a través de los casos de uso
// (mismas validaciones que la API).
//
// Uso: go run ./cmd/import_catalog -file catalogo.csv [-charset iso-8859-1] [-dry-run]
//
// Cabecera: category,name,description,price,quantity,quantity_minimum
// Las categorías inexistentes se crean por nombre.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/usecase"
	"github.com/jhoicas/estoque-api/internal/infrastructure/postgres"
	"github.com/jhoicas/estoque-api/pkg/config"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

func main() {
	file := flag.String("file", "catalogo.csv", "ruta del CSV")
	charset := flag.String("charset", "utf-8", "codificación del CSV: utf-8 | iso-8859-1 | windows-1252")
	dryRun := flag.Bool("dry-run", false, "solo valida el archivo, no escribe en la base")
	flag.Parse()

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	r, err := decodeReader(f, *charset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	rows, rowErrs, err := parseCatalog(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	for _, e := range rowErrs {
		fmt.Fprintf(os.Stderr, "omitida: %v\n", e)
	}
	if *dryRun {
		fmt.Printf("Validado %s: %d filas válidas, %d omitidas\n", *file, len(rows), len(rowErrs))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Named("import_catalog")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	categoryRepo := postgres.NewCategoryRepository(pool)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	productUC := usecase.NewProductUseCase(postgres.NewProductRepository(pool), categoryRepo)

	categories, err := loadCategories(ctx, categoryUC)
	if err != nil {
		log.Fatal().Err(err).Msg("listar categorías")
	}

	created, failed := 0, len(rowErrs)
	for _, row := range rows {
		categoryID, err := ensureCategory(ctx, categoryUC, categories, row.Category)
		if err != nil {
			log.Warn().Err(err).Int("line", row.Line).Str("category", row.Category).Msg("categoría")
			failed++
			continue
		}
		_, err = productUC.Create(ctx, dto.CreateProductRequest{
			Name:            row.Name,
			Description:     row.Description,
			Price:           row.Price,
			Quantity:        row.Quantity,
			QuantityMinimum: row.QuantityMinimum,
			CategoryID:      categoryID,
		})
		if err != nil {
			log.Warn().Err(err).Int("line", row.Line).Str("product", row.Name).Msg("producto")
			failed++
			continue
		}
		created++
	}
	log.Info().Int("created", created).Int("failed", failed).Str("file", *file).Msg("importación terminada")
}

func loadCategories(ctx context.Context, uc *usecase.CategoryUseCase) (map[string]string, error) {
	list, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(list))
	for _, c := range list {
		byName[strings.ToLower(c.Name)] = c.ID
	}
	return byName, nil
}

func ensureCategory(ctx context.Context, uc *usecase.CategoryUseCase, byName map[string]string, name string) (string, error) {
	key := strings.ToLower(name)
	if id, ok := byName[key]; ok {
		return id, nil
	}
	c, err := uc.Create(ctx, dto.CreateCategoryRequest{Name: name})
	if err != nil {
		return "", err
	}
	byName[key] = c.ID
	return c.ID, nil
}
