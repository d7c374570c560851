package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"property-intake/internal/model"
	"property-intake/internal/utils"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

const listingColumns = `
	id, source_message_id, message_date, agent_name, agent_contact, company_name,
	raw_message, message_type, property_type, area_sqft, bedroom_count, price, price_text,
	location, project_name, furnishing_status, property_status, facing_direction,
	parking_count, special_features, image_url, latitude, longitude, created_at, updated_at`

// PostgresRepository handles listing storage in PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// buildListingWhere turns filters into a WHERE clause with positional arguments
func buildListingWhere(filters *model.ListingFilters) (string, []interface{}, int) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if filters != nil {
		if filters.PriceMin != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("price >= $%d", argIndex))
			args = append(args, *filters.PriceMin)
			argIndex++
		}
		if filters.PriceMax != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("price <= $%d", argIndex))
			args = append(args, *filters.PriceMax)
			argIndex++
		}
		if filters.Bedrooms != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("bedroom_count = $%d", argIndex))
			args = append(args, *filters.Bedrooms)
			argIndex++
		}
		if filters.PropertyType != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("property_type ILIKE $%d", argIndex))
			args = append(args, *filters.PropertyType)
			argIndex++
		}
		if filters.Location != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("location ILIKE $%d", argIndex))
			args = append(args, "%"+*filters.Location+"%")
			argIndex++
		}
		if filters.MessageType != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("message_type = $%d", argIndex))
			args = append(args, *filters.MessageType)
			argIndex++
		}
		if filters.PropertyStatus != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("property_status = $%d", argIndex))
			args = append(args, *filters.PropertyStatus)
			argIndex++
		}
		if filters.FurnishingStatus != nil {
			whereClauses = append(whereClauses, fmt.Sprintf("furnishing_status = $%d", argIndex))
			args = append(args, *filters.FurnishingStatus)
			argIndex++
		}
		// JSONB special features - fuzzy matching with common spellings
		if len(filters.SpecialFeatures) > 0 {
			cond, params, newIndex := utils.BuildFuzzyFeatureQuery("special_features", filters.SpecialFeatures, argIndex)
			whereClauses = append(whereClauses, cond)
			args = append(args, params...)
			argIndex = newIndex
		}
	}

	return strings.Join(whereClauses, " AND "), args, argIndex
}

// SearchWithFilters returns one page of listings matching filters and the total match count
func (r *PostgresRepository) SearchWithFilters(
	ctx context.Context,
	filters *model.ListingFilters,
	limit, offset int,
) ([]model.Listing, int, error) {
	whereClause, args, argIndex := buildListingWhere(filters)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM listings WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count results: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM listings
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d
	`, listingColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	var listings []model.Listing
	if err := r.db.SelectContext(ctx, &listings, selectQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch listings: %w", err)
	}

	return listings, total, nil
}

// GetListingByID retrieves a single listing, nil when it does not exist
func (r *PostgresRepository) GetListingByID(ctx context.Context, listingID int64) (*model.Listing, error) {
	var listing model.Listing
	query := fmt.Sprintf(`SELECT %s FROM listings WHERE id = $1`, listingColumns)
	err := r.db.GetContext(ctx, &listing, query, listingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &listing, nil
}

// SimilarListings returns the nearest neighbours of a listing by embedding cosine distance
func (r *PostgresRepository) SimilarListings(ctx context.Context, listingID int64, limit int) ([]model.Listing, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM listings
		WHERE id <> $1 AND embedding IS NOT NULL
		ORDER BY embedding <=> (SELECT embedding FROM listings WHERE id = $1)
		LIMIT $2
	`, listingColumns)

	var listings []model.Listing
	if err := r.db.SelectContext(ctx, &listings, query, listingID, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch similar listings: %w", err)
	}
	return listings, nil
}

// UpdateEmbedding updates the embedding vector for a listing
func (r *PostgresRepository) UpdateEmbedding(ctx context.Context, listingID int64, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	query := `UPDATE listings SET embedding = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, vec, listingID)
	if err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}
	return nil
}

// BatchUpdateEmbeddings updates embeddings for multiple listings in one transaction
func (r *PostgresRepository) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	success := 0
	var errors []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errors
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE listings SET embedding = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errors
	}
	defer stmt.Close()

	for _, item := range items {
		vec := pgvector.NewVector(item.Embedding)
		res, err := stmt.ExecContext(ctx, vec, item.ListingID)
		if err != nil {
			errors = append(errors, fmt.Sprintf("listing_id %d: %v", item.ListingID, err))
			continue
		}
		if n, _ := res.RowsAffected(); n == 0 {
			errors = append(errors, fmt.Sprintf("listing_id %d: not found", item.ListingID))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errors = append(errors, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errors
	}

	return success, errors
}

// LogMatch records a listing match served to a session
func (r *PostgresRepository) LogMatch(ctx context.Context, entry model.MatchLog) error {
	criteria, err := json.Marshal(entry.Criteria)
	if err != nil {
		return fmt.Errorf("failed to encode criteria: %w", err)
	}
	filters, err := json.Marshal(entry.Filters)
	if err != nil {
		return fmt.Errorf("failed to encode filters: %w", err)
	}

	logQuery := `
		INSERT INTO match_logs (session_id, criteria, filters, result_count, returned_listing_ids, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, logQuery,
		entry.SessionID, criteria, filters, entry.ResultCount, pq.Array(entry.ListingIDs), entry.ResponseTimeMs)
	if err != nil {
		return fmt.Errorf("failed to log match: %w", err)
	}
	return nil
}

// LogFeedback attaches a user action to the latest match logged for the session
func (r *PostgresRepository) LogFeedback(ctx context.Context, sessionID string, listingID int64, action string) error {
	query := `
		UPDATE match_logs
		SET clicked_listing_id = $2, action = $3
		WHERE id = (
			SELECT id FROM match_logs WHERE session_id = $1 ORDER BY created_at DESC LIMIT 1
		)
	`
	_, err := r.db.ExecContext(ctx, query, sessionID, listingID, action)
	if err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	return nil
}
