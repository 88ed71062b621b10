// Aromatch - Hybrid Perfume Recommendation Service
// Copyright 2026 PerfumeOnMe
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perfumeonme/aromatch

package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/perfumeonme/aromatch/internal/logging"
)

// columnAliases maps accepted CSV header names onto canonical field
// names. The dataset has shipped under a few different header spellings.
var columnAliases = map[string]string{
	"brand":                   "brand",
	"name":                    "name",
	"perfume_name":            "name",
	"core_keywords":           "core_keywords",
	"keywords":                "core_keywords",
	"description":             "description",
	"tagline":                 "description",
	"top_note_keywords":       "top_note_keywords",
	"middle_note_keywords":    "middle_note_keywords",
	"base_note_keywords":      "base_note_keywords",
	"top_note_description":    "top_note_description",
	"middle_note_description": "middle_note_description",
	"base_note_description":   "base_note_description",
	"gender":                  "gender",
	"season":                  "season",
	"place":                   "place",
	"image_url":               "image_url",
	"removebg_image_url":      "removebg_image_url",
}

// requiredColumns must be present in the header for the file to parse.
var requiredColumns = []string{"brand", "name", "core_keywords"}

// S3Client is the subset of the S3 API the loader needs.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LoadFile reads the catalog from a local CSV file.
func LoadFile(ctx context.Context, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	table, err := parseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	return table, nil
}

// LoadS3 reads the catalog from an S3 object.
func LoadS3(ctx context.Context, client S3Client, bucket, key string) (*Table, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get catalog object s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	table, err := parseCSV(out.Body)
	if err != nil {
		return nil, fmt.Errorf("parse catalog object s3://%s/%s: %w", bucket, key, err)
	}
	return table, nil
}

// parseCSV decodes catalog rows from r. Fields are normalized with
// CleanField so downstream consumers never see placeholder values or
// embedded newlines.
func parseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\uFEFF")))
		if canonical, ok := columnAliases[name]; ok {
			colIndex[canonical] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	field := func(record []string, col string) string {
		i, ok := colIndex[col]
		if !ok || i >= len(record) {
			return ""
		}
		return CleanField(record[i])
	}

	var raw []Item
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		raw = append(raw, Item{
			Brand:                 field(record, "brand"),
			Name:                  field(record, "name"),
			CoreKeywords:          field(record, "core_keywords"),
			Description:           field(record, "description"),
			TopNoteKeywords:       field(record, "top_note_keywords"),
			MiddleNoteKeywords:    field(record, "middle_note_keywords"),
			BaseNoteKeywords:      field(record, "base_note_keywords"),
			TopNoteDescription:    field(record, "top_note_description"),
			MiddleNoteDescription: field(record, "middle_note_description"),
			BaseNoteDescription:   field(record, "base_note_description"),
			Gender:                field(record, "gender"),
			Season:                field(record, "season"),
			Place:                 field(record, "place"),
			ImageURL:              field(record, "image_url"),
			RemovedBgImageURL:     field(record, "removebg_image_url"),
		})
	}

	table, excluded := NewTable(raw)
	if excluded > 0 {
		logging.Warn().
			Str("component", "catalog").
			Int("excluded_rows", excluded).
			Int("usable_rows", table.Len()).
			Msg("excluded catalog rows missing name or core keywords")
	}

	return table, nil
}

// placeholderValues are source-data markers that mean "no value".
var placeholderValues = map[string]struct{}{
	"-1":   {},
	"nan":  {},
	"none": {},
	"null": {},
}

// CleanField normalizes a raw dataset field: placeholder values become
// empty strings, embedded newlines become spaces, and surrounding
// whitespace is trimmed. The function is idempotent, cleaning an
// already clean value returns it unchanged.
func CleanField(s string) string {
	trimmed := strings.TrimSpace(s)
	if _, isPlaceholder := placeholderValues[strings.ToLower(trimmed)]; isPlaceholder {
		return ""
	}
	replacer := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
	cleaned := replacer.Replace(trimmed)
	return strings.Join(strings.Fields(cleaned), " ")
}
