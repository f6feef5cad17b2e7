package dataset

import (
	"context"
	"datacensus-service/service/completeness"
	"datacensus-service/service/models"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
)

const (
	// DemoDatasetID 演示数据集ID
	DemoDatasetID = "personas-001"

	demoRows = 100
	demoSeed = 42
)

var demoCities = []string{"NYC", "LA", "CHI", ""}

// DemoDatasetRequest 生成演示数据集：nombre 每 10 行缺失一次，edad 约 30% 缺失，ciudad 含空串
func DemoDatasetRequest(rng *rand.Rand) *CreateDatasetRequest {
	rows := make([][]interface{}, 0, demoRows)
	for i := 0; i < demoRows; i++ {
		var nombre interface{}
		if i%10 != 0 {
			nombre = fmt.Sprintf("Person_%d", i)
		}
		var edad interface{}
		if rng.Float64() > 0.3 {
			edad = 18 + rng.Intn(62)
		}
		rows = append(rows, []interface{}{
			i + 1,
			nombre,
			fmt.Sprintf("person%d@example.com", i),
			edad,
			demoCities[rng.Intn(len(demoCities))],
		})
	}

	return &CreateDatasetRequest{
		ID:          DemoDatasetID,
		Name:        "Personas",
		Description: "Dataset de prueba con datos de personas",
		Columns: []ColumnDefinition{
			{Name: "id", Kind: string(completeness.KindNumeric)},
			{Name: "nombre", Kind: string(completeness.KindText)},
			{Name: "email", Kind: string(completeness.KindText)},
			{Name: "edad", Kind: string(completeness.KindNumeric)},
			{Name: "ciudad", Kind: string(completeness.KindText)},
		},
		Rows: rows,
		Metadata: map[string]interface{}{
			completeness.MetadataExpectedColumnsKey: 5,
			"dataset_name":                          "Personas",
			"descripcion":                           "Dataset de prueba con datos de personas",
		},
		SourceFormat: "demo",
	}
}

// SeedDemoDataset 写入演示数据集，已存在时不做任何修改
func (s *Service) SeedDemoDataset(ctx context.Context) (*models.Dataset, bool, error) {
	existing, err := s.Get(ctx, DemoDatasetID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrDatasetNotFound) {
		return nil, false, err
	}

	dataset, err := s.Create(ctx, DemoDatasetRequest(rand.New(rand.NewSource(demoSeed))))
	if err != nil {
		return nil, false, fmt.Errorf("写入演示数据集失败: %w", err)
	}
	slog.Info("演示数据集已写入", "dataset_id", dataset.ID, "rows", dataset.RowCount)
	return dataset, true, nil
}
