package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

const (
	csvDateLayout   = "2006-01-02"
	statusSold      = "Sold"
	statusAvailable = "Available"
)

var csvHeader = []string{
	"Name",
	"Category",
	"Purchase Price",
	"Estimated Value",
	"Purchase Date",
	"Storage Location",
	"Language",
	"Status",
	"Created At",
}

// ExportCSV formats items into the nine-column export layout. An item with a
// quantity above one is written as one row per unit; quantities above
// model.MaxQuantity are rejected.
func ExportCSV(items []model.CollectionItem) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for _, item := range items {
		row := csvRow(item)
		units := item.Quantity
		if units < 1 {
			units = 1
		}
		if units > model.MaxQuantity {
			return "", model.NewValidationError("quantity", fmt.Sprintf("item %s exceeds %d units", item.ID, model.MaxQuantity))
		}
		for range units {
			if err := w.Write(row); err != nil {
				return "", fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return b.String(), nil
}

func csvRow(item model.CollectionItem) []string {
	purchaseDate := ""
	if item.PurchaseDate != nil {
		purchaseDate = item.PurchaseDate.UTC().Format(csvDateLayout)
	}
	status := statusAvailable
	if item.IsSold {
		status = statusSold
	}

	return []string{
		item.Name,
		item.Category,
		strconv.FormatFloat(item.PurchasedPrice, 'f', 2, 64),
		strconv.FormatFloat(item.EstimatedValue, 'f', 2, 64),
		purchaseDate,
		item.StorageLocation,
		item.Language,
		status,
		item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ParseCSV reads rows produced by ExportCSV back into drafts, one per row.
// Sold rows are skipped: a draft cannot carry a sale, and importing one would
// merge it into an active item with the same merge key. Creation date is
// ignored.
func ParseCSV(r io.Reader) ([]model.ItemDraft, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []model.ItemDraft{}, nil
		}
		return nil, model.NewValidationError("csv", err.Error())
	}
	for i, name := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), name) {
			return nil, model.NewValidationError("csv", fmt.Sprintf("unexpected column %q, want %q", header[i], name))
		}
	}

	drafts := []model.ItemDraft{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, model.NewValidationError("csv", err.Error())
		}
		if strings.EqualFold(strings.TrimSpace(record[7]), statusSold) {
			continue
		}

		draft, err := parseRow(record)
		if err != nil {
			return nil, model.NewValidationError("csv", fmt.Sprintf("line %d: %s", line, err.Error()))
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

func parseRow(record []string) (model.ItemDraft, error) {
	draft := model.ItemDraft{
		Name:            record[0],
		Category:        record[1],
		StorageLocation: record[5],
		Language:        record[6],
		Quantity:        1,
	}

	var err error
	if draft.PurchasedPrice, err = parseAmount(record[2]); err != nil {
		return model.ItemDraft{}, fmt.Errorf("purchase price: %w", err)
	}
	if draft.EstimatedValue, err = parseAmount(record[3]); err != nil {
		return model.ItemDraft{}, fmt.Errorf("estimated value: %w", err)
	}
	if s := strings.TrimSpace(record[4]); s != "" {
		date, err := time.Parse(csvDateLayout, s)
		if err != nil {
			return model.ItemDraft{}, fmt.Errorf("purchase date: %w", err)
		}
		draft.PurchaseDate = &date
	}
	return draft, nil
}

func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// ExportCSV formats the caller's collection.
func (s *Collection) ExportCSV(ctx context.Context) (string, error) {
	items, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	return ExportCSV(items)
}

// ImportCSV parses an export and adds every unsold row. It returns the number
// of rows added before the first failure.
func (s *Collection) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	drafts, err := ParseCSV(r)
	if err != nil {
		return 0, err
	}

	for i, draft := range drafts {
		if _, err := s.Add(ctx, draft); err != nil {
			return i, err
		}
	}
	return len(drafts), nil
}
