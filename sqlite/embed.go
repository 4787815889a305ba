package sqlite

import (
	"context"

	"github.com/google/uuid"
	"github.com/kmichalik/embedtrace"
)

// Ensure EmbedService implements the interface.
var _ embedtrace.EmbedLog = (*EmbedService)(nil)

// EmbedService provides the SQLite-backed embed log.
type EmbedService struct {
	db *DB
}

// NewEmbedService creates a new EmbedService.
func NewEmbedService(db *DB) *EmbedService {
	return &EmbedService{db: db}
}

// PostURLs returns the set of canonical post URLs already in the log.
func (s *EmbedService) PostURLs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT post_url FROM embeds`)
	if err != nil {
		return nil, embedtrace.Errorf(embedtrace.EINTERNAL, "failed to read post URLs: %v", err)
	}
	defer rows.Close()

	urls := make(map[string]struct{})
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, embedtrace.Errorf(embedtrace.EINTERNAL, "failed to scan post URL: %v", err)
		}
		urls[url] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, embedtrace.Errorf(embedtrace.EINTERNAL, "failed to iterate post URLs: %v", err)
	}

	return urls, nil
}

// AppendEmbeds appends embeds to the log in a single transaction.
// Each embed without an ID is assigned one; the assignment is visible to the
// caller so newly written rows can be addressed later.
func (s *EmbedService) AppendEmbeds(ctx context.Context, embeds []*embedtrace.Embed) error {
	if len(embeds) == 0 {
		return nil
	}

	for _, embed := range embeds {
		if err := embed.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return embedtrace.Errorf(embedtrace.EINTERNAL, "failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO embeds (
			id, discovered_date, discovered_time, platform, article_domain,
			author_handle, article_url, post_url, article_title,
			article_summary, published_date, repost_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return embedtrace.Errorf(embedtrace.EINTERNAL, "failed to prepare insert: %v", err)
	}
	defer stmt.Close()

	for _, embed := range embeds {
		if embed.ID == "" {
			embed.ID = uuid.New().String()
		}

		published := ""
		if embed.ArticlePublished != nil {
			published = embed.ArticlePublished.Format(publishedLayout)
		}

		_, err := stmt.ExecContext(ctx,
			embed.ID,
			embed.DiscoveredAt.Format(dateLayout),
			embed.DiscoveredAt.Format(timeLayout),
			string(embed.Platform),
			embed.ArticleDomain,
			embed.AuthorHandle,
			embed.ArticleURL,
			embed.PostURL,
			embed.ArticleTitle,
			embed.ArticleSummary,
			published,
			string(embed.RepostStatus),
		)
		if err != nil {
			return embedtrace.Errorf(embedtrace.EINTERNAL, "failed to insert embed: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return embedtrace.Errorf(embedtrace.EINTERNAL, "failed to commit transaction: %v", err)
	}

	return nil
}

// UpdateRepostStatus sets the repost status of a single logged embed.
func (s *EmbedService) UpdateRepostStatus(ctx context.Context, id string, status embedtrace.RepostStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE embeds SET repost_status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return embedtrace.Errorf(embedtrace.EINTERNAL, "failed to update repost status: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return embedtrace.Errorf(embedtrace.EINTERNAL, "failed to check update result: %v", err)
	}
	if affected == 0 {
		return embedtrace.Errorf(embedtrace.ENOTFOUND, "embed not found: %s", id)
	}

	return nil
}

// PendingReposts returns Bluesky embeds whose repost status is pending,
// oldest first.
func (s *EmbedService) PendingReposts(ctx context.Context) ([]*embedtrace.PendingRepost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, post_url, article_url, article_title, article_domain
		FROM embeds
		WHERE platform = ? AND repost_status = ?
		ORDER BY discovered_date, discovered_time
	`, string(embedtrace.PlatformBluesky), string(embedtrace.RepostPending))
	if err != nil {
		return nil, embedtrace.Errorf(embedtrace.EINTERNAL, "failed to read pending reposts: %v", err)
	}
	defer rows.Close()

	var pending []*embedtrace.PendingRepost
	for rows.Next() {
		p := &embedtrace.PendingRepost{}
		if err := rows.Scan(&p.ID, &p.PostURL, &p.ArticleURL, &p.ArticleTitle, &p.ArticleDomain); err != nil {
			return nil, embedtrace.Errorf(embedtrace.EINTERNAL, "failed to scan pending repost: %v", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, embedtrace.Errorf(embedtrace.EINTERNAL, "failed to iterate pending reposts: %v", err)
	}

	return pending, nil
}

// Storage layouts match the fixed row shape written by Embed.Row.
const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04:05"
	publishedLayout = "2006-01-02 15:04"
)
