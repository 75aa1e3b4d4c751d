package queries

import (
	"context"

	"admin-console/internal/usecase"
	"admin-console/internal/usecase/readmodel"
)

// AccessQueries resolves the session and classifies admin status in
// sequence, exactly once per request. The refreshed session, when non-nil,
// must reach the response on every path, including failures.
type AccessQueries interface {
	Check(ctx context.Context, creds usecase.Credentials) (*readmodel.AccessDecision, *usecase.Session, error)
}

type accessQueriesImpl struct {
	resolver   usecase.SessionResolver
	classifier usecase.AdminClassifier
}

func NewAccessQueries(resolver usecase.SessionResolver, classifier usecase.AdminClassifier) AccessQueries {
	return &accessQueriesImpl{
		resolver:   resolver,
		classifier: classifier,
	}
}

func (q *accessQueriesImpl) Check(ctx context.Context, creds usecase.Credentials) (*readmodel.AccessDecision, *usecase.Session, error) {
	res, err := q.resolver.Resolve(ctx, creds)
	if err != nil {
		return nil, nil, err
	}

	if res.Identity == nil {
		return &readmodel.AccessDecision{}, res.Refreshed, nil
	}

	isAdmin, err := q.classifier.IsAdmin(ctx, *res.Identity)
	if err != nil {
		return nil, res.Refreshed, err
	}

	return &readmodel.AccessDecision{
		Authenticated: true,
		IsAdmin:       isAdmin,
		UserID:        res.Identity.ID,
		Email:         res.Identity.Email,
	}, res.Refreshed, nil
}
