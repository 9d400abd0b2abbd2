package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/gst-aqn42/TP1/internal/catalog"
	"github.com/gst-aqn42/TP1/internal/database"
	"github.com/gst-aqn42/TP1/internal/reconcile"
)

// SubscribeResult tells a new subscription apart from a repeated one.
type SubscribeResult int

const (
	Subscribed SubscribeResult = iota
	Reactivated
	AlreadySubscribed
)

// Subscribe registers an address for notifications. A cancelled
// subscription is reactivated.
func (s *Service) Subscribe(ctx context.Context, rawEmail string) (catalog.Subscription, SubscribeResult, error) {
	email, err := NormalizeEmail(rawEmail)
	if err != nil {
		return catalog.Subscription{}, 0, err
	}

	existing, err := s.q.GetSubscription(ctx, email)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		row, err := s.q.InsertSubscription(ctx, email)
		if database.IsUniqueViolation(err) {
			// Concurrent subscribe of the same address.
			return s.Subscribe(ctx, email)
		}
		if err != nil {
			return catalog.Subscription{}, 0, fmt.Errorf("insert subscription: %w", err)
		}
		s.audit(ctx, AuditLogParams{Action: ActionSubscribe, Entity: "subscription", EntityID: email})
		return subscriptionFromDB(row), Subscribed, nil
	case err != nil:
		return catalog.Subscription{}, 0, fmt.Errorf("get subscription: %w", err)
	case existing.Active:
		return subscriptionFromDB(existing), AlreadySubscribed, nil
	}

	row, err := s.q.SetSubscriptionActive(ctx, database.SetSubscriptionActiveParams{Email: email, Active: true})
	if err != nil {
		return catalog.Subscription{}, 0, notFound(err, "subscription", email)
	}
	s.audit(ctx, AuditLogParams{Action: ActionSubscribe, Entity: "subscription", EntityID: email})
	return subscriptionFromDB(row), Reactivated, nil
}

// Unsubscribe cancels an active subscription.
func (s *Service) Unsubscribe(ctx context.Context, rawEmail string) error {
	email, err := NormalizeEmail(rawEmail)
	if err != nil {
		return err
	}
	existing, err := s.q.GetSubscription(ctx, email)
	if err != nil {
		return notFound(err, "subscription", email)
	}
	if !existing.Active {
		return fmt.Errorf("subscription %s: %w", email, catalog.ErrNotFound)
	}
	if _, err := s.q.SetSubscriptionActive(ctx, database.SetSubscriptionActiveParams{Email: email, Active: false}); err != nil {
		return notFound(err, "subscription", email)
	}
	s.audit(ctx, AuditLogParams{Action: ActionUnsubscribe, Entity: "subscription", EntityID: email})
	return nil
}

// SubscriptionTotal counts the active subscriptions.
func (s *Service) SubscriptionTotal(ctx context.Context) (int, error) {
	n, err := s.q.CountActiveSubscriptions(ctx)
	if err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return int(n), nil
}

// ListSubscriptions returns the active newsletter subscriptions, oldest
// first.
func (s *Service) ListSubscriptions(ctx context.Context) ([]catalog.Subscription, error) {
	rows, err := s.q.ListActiveSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	out := make([]catalog.Subscription, 0, len(rows))
	for _, row := range rows {
		out = append(out, subscriptionFromDB(row))
	}
	return out, nil
}

// =============================================================================
// Author subscriptions
// =============================================================================

// SubscribeAuthor asks for a notice whenever an Article naming author is
// added. An address may follow an author only once while the subscription
// is active; author names compare ignoring case.
func (s *Service) SubscribeAuthor(ctx context.Context, rawEmail, author string) (catalog.AuthorSubscription, error) {
	email, err := NormalizeEmail(rawEmail)
	if err != nil {
		return catalog.AuthorSubscription{}, err
	}
	author = strings.Join(strings.Fields(author), " ")
	if author == "" {
		return catalog.AuthorSubscription{}, catalog.Required("nome_autor")
	}

	row, err := s.q.InsertAuthorSubscription(ctx, database.InsertAuthorSubscriptionParams{
		ID:         newPgUUID(),
		Email:      email,
		AuthorName: author,
	})
	if database.IsUniqueViolation(err) {
		return catalog.AuthorSubscription{}, fmt.Errorf("%s already subscribed to %s: %w", email, author, catalog.ErrConflict)
	}
	if err != nil {
		return catalog.AuthorSubscription{}, fmt.Errorf("insert author subscription: %w", err)
	}
	sub := authorSubscriptionFromDB(row)
	s.audit(ctx, AuditLogParams{
		Action:   ActionAuthorSubscribe,
		Entity:   "author_subscription",
		EntityID: sub.ID,
		Detail:   map[string]any{"email": email, "nome_autor": author},
	})
	return sub, nil
}

// UnsubscribeAuthor cancels an active author subscription by id.
func (s *Service) UnsubscribeAuthor(ctx context.Context, id string) error {
	if err := validateID("id", id); err != nil {
		return err
	}
	n, err := s.q.DeactivateAuthorSubscription(ctx, ToPgUUID(id))
	if err != nil {
		return fmt.Errorf("deactivate author subscription: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("author subscription %s: %w", id, catalog.ErrNotFound)
	}
	s.audit(ctx, AuditLogParams{Action: ActionAuthorUnsubscribe, Entity: "author_subscription", EntityID: id})
	return nil
}

// announceArticle notifies every subscriber of one of a's authors. Each
// address gets one notice per Article. Failures are logged; they never undo
// the Article.
func (s *Service) announceArticle(ctx context.Context, a catalog.Article) {
	subs, err := s.q.ListActiveAuthorSubscriptions(ctx)
	if err != nil {
		s.logger.Warn("list author subscriptions", "article_id", a.ID, "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	byAuthor := make(map[string]string, len(a.Authors))
	for _, name := range a.AuthorNames() {
		byAuthor[reconcile.Normalize(name)] = name
	}

	sent := make(map[string]bool)
	for _, sub := range subs {
		author, ok := byAuthor[reconcile.Normalize(sub.AuthorName)]
		if !ok || sent[sub.Email] {
			continue
		}
		sent[sub.Email] = true
		if err := s.notifier.NotifyNewArticle(ctx, sub.Email, author, a); err != nil {
			s.logger.Warn("article notice failed", "article_id", a.ID, "to", sub.Email, "error", err)
		}
	}
}
