package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"sqlassist/internal/adapter"
)

// StorePath is the SQLite file the CSV is loaded into: same directory, .db extension.
func StorePath(csvPath string) string {
	return strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + ".db"
}

// StoreURI is the store URI for csvPath.
func StoreURI(csvPath string) string {
	return adapter.SQLiteURI(StorePath(csvPath))
}

// TableName is the CSV base name without extension.
func TableName(csvPath string) string {
	base := filepath.Base(csvPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads csvPath and replaces its table in the SQLite store next to it.
// Returns the store URI on success.
func Load(ctx context.Context, csvPath string, logger *zap.Logger) (string, error) {
	start := time.Now()
	f, err := os.Open(csvPath)
	if err != nil {
		return "", fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	frame, err := ReadCSV(f)
	if err != nil {
		return "", fmt.Errorf("read dataset %s: %w", csvPath, err)
	}

	uri := StoreURI(csvPath)
	db, err := adapter.Open(ctx, uri)
	if err != nil {
		return "", fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	table := TableName(csvPath)
	if err := LoadInto(ctx, db, table, frame); err != nil {
		return "", err
	}

	logger.Info("Dataset loaded",
		zap.String("table", table),
		zap.String("store", uri),
		zap.Int("columns", len(frame.Columns)),
		zap.Int("rows", len(frame.Rows)),
		zap.Duration("elapsed", time.Since(start)))
	return uri, nil
}

// LoadInto replaces table in db with the frame's rows.
func LoadInto(ctx context.Context, db adapter.DBAdapter, table string, frame *Frame) error {
	if err := db.ReplaceTable(ctx, table, frame.Columns, frame.Rows); err != nil {
		return fmt.Errorf("load table %s: %w", table, err)
	}
	return nil
}
