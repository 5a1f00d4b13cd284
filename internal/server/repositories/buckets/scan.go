package buckets

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/eventsync/internal/common"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
)

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*models.BucketItem, error) {
	var it models.BucketItem
	err := s.Scan(&it.ID, &it.Title, &it.TargetMonth, &it.DepartmentID, &it.Priority, &it.AuthorID, &it.AuthorName, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return &it, nil
}

func scanItems(rows *sql.Rows) ([]*models.BucketItem, error) {
	defer rows.Close()

	var result []*models.BucketItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
