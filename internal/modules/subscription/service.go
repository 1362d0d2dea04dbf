package subscription

import (
	"context"
	"errors"

	"recipebox/internal/domain"
	"recipebox/internal/repository"
)

// Service manages the subscriber -> author relation and assembles the
// author cards served by the subscription endpoints.
type Service struct {
	users   UserRepositoryInterface
	recipes RecipeRepositoryInterface
	subs    repository.RelationRepository[domain.Subscription]
}

func NewService(
	users UserRepositoryInterface,
	recipes RecipeRepositoryInterface,
	subs repository.RelationRepository[domain.Subscription],
) *Service {
	return &Service{users: users, recipes: recipes, subs: subs}
}

// Subscribe links the subscriber to the author. Subscribing to oneself
// or twice to the same author fails.
func (s *Service) Subscribe(ctx context.Context, subscriberID, authorID int64, recipesLimit int) (*AuthorCard, error) {
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if subscriberID == authorID {
		return nil, ErrSelfSubscription
	}

	if _, err := s.subs.Add(ctx, subscriberID, authorID); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}

	return s.authorCard(ctx, *author, recipesLimit)
}

// Unsubscribe removes the link; removing one that never existed fails.
func (s *Service) Unsubscribe(ctx context.Context, subscriberID, authorID int64) error {
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		return err
	}

	if err := s.subs.Remove(ctx, subscriberID, authorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotSubscribed
		}
		return err
	}
	return nil
}

// List pages the authors the subscriber follows, each with its recipes
// truncated to recipesLimit when the limit is positive.
func (s *Service) List(ctx context.Context, subscriberID int64, limit, offset, recipesLimit int) ([]AuthorCard, int64, error) {
	authors, total, err := s.users.ListSubscribedAuthors(ctx, subscriberID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	cards := make([]AuthorCard, 0, len(authors))
	for _, author := range authors {
		card, err := s.authorCard(ctx, author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		cards = append(cards, *card)
	}

	return cards, total, nil
}

func (s *Service) authorCard(ctx context.Context, author domain.User, recipesLimit int) (*AuthorCard, error) {
	recipes, err := s.recipes.ListByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return nil, err
	}
	count, err := s.recipes.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	return &AuthorCard{User: author, Recipes: recipes, RecipesCount: count}, nil
}
