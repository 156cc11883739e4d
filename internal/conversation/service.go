// Package conversation computes per-user views of direct-message threads
// from persisted state.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/samber/lo"

	"intouch/pkg/interfaces"
	"intouch/pkg/types"
)

// Service recomputes summaries on every call; nothing is cached.
type Service struct {
	store  interfaces.MessageStore
	logger *slog.Logger
}

func NewService(store interfaces.MessageStore, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With("component", "conversation"),
	}
}

// Summary describes the conversation with otherUserID as seen by userID.
// UnreadCount counts messages from otherUserID that userID has not read.
func (s *Service) Summary(ctx context.Context, userID, otherUserID string) (types.ConversationSummary, error) {
	summary := types.ConversationSummary{UserID: otherUserID}

	unread, err := s.store.CountUnread(ctx, otherUserID, userID)
	if err != nil {
		return summary, fmt.Errorf("failed to count unread messages: %w", err)
	}
	summary.UnreadCount = unread

	last, err := s.store.GetLastMessage(ctx, userID, otherUserID)
	if err != nil {
		return summary, fmt.Errorf("failed to load last message: %w", err)
	}
	if last != nil {
		summary.LastMessage = last.Content
		summary.LastMessageAt = lo.ToPtr(last.SentAt)
		summary.LastSenderID = last.SenderID
	}

	return summary, nil
}

// Summaries lists every conversation of userID, most recent first.
func (s *Service) Summaries(ctx context.Context, userID string) ([]types.ConversationSummary, error) {
	if !types.IsValidUserID(userID) {
		return nil, ErrInvalidUserID
	}

	partners, err := s.store.ListConversationPartners(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation partners: %w", err)
	}

	summaries := make([]types.ConversationSummary, 0, len(partners))
	for _, partner := range partners {
		summary, err := s.Summary(ctx, userID, partner)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessageAt, summaries[j].LastMessageAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	return summaries, nil
}

// History returns up to limit most recent messages between the two users,
// oldest first. limit <= 0 returns the whole thread.
func (s *Service) History(ctx context.Context, userID, otherUserID string, limit int) ([]*types.Message, error) {
	if !types.IsValidUserID(userID) || !types.IsValidUserID(otherUserID) {
		return nil, ErrInvalidUserID
	}

	messages, err := s.store.GetConversation(ctx, userID, otherUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if messages == nil {
		messages = []*types.Message{}
	}
	return messages, nil
}

// UnreadTotal sums unread messages across every conversation of userID.
func (s *Service) UnreadTotal(ctx context.Context, userID string) (int, error) {
	summaries, err := s.Summaries(ctx, userID)
	if err != nil {
		return 0, err
	}
	return lo.SumBy(summaries, func(summary types.ConversationSummary) int {
		return summary.UnreadCount
	}), nil
}
