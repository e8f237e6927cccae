package usecase

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/vadimbarashkov/linksplit/internal/entity"
)

const (
	credentialKeyPrefix = "ad_session:"
	referrerKeyPrefix   = "referrer:"
)

type sessionStore interface {
	Put(ctx context.Context, sessionID, key, value string) error
	// Take returns the value stored under key and removes it in the same step.
	Take(ctx context.Context, sessionID, key string) (string, bool, error)
}

type linkFinder interface {
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.Link, error)
}

type limitChecker interface {
	Check(ctx context.Context, clientID string) (entity.Verdict, error)
}

// IssueResult is what a visitor receives when opening the interstitial page.
type IssueResult struct {
	Link       *entity.Link
	Credential entity.Credential
	Advisory   entity.Verdict // Advisory tells the visitor upfront that the view will not be counted.
}

// Redemption is the outcome of presenting a credential.
type Redemption struct {
	Outcome  entity.RedeemOutcome
	Referrer string
	IssuedAt time.Time
}

type storedCredential struct {
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issued_at"`
}

// Gate issues single-use view credentials bound to a browser session and redeems them.
type Gate struct {
	sessions sessionStore
	links    linkFinder
	limiter  limitChecker
	logger   *slog.Logger
	newToken func() (string, error)
	now      func() time.Time
}

func NewGate(sessions sessionStore, links linkFinder, limiter limitChecker, logger *slog.Logger) *Gate {
	return &Gate{
		sessions: sessions,
		links:    links,
		limiter:  limiter,
		logger:   logger,
		newToken: func() (string, error) { return gonanoid.New() },
		now:      time.Now,
	}
}

// Issue stores a fresh credential for (sessionID, shortCode), replacing any earlier
// one. The limiter is consulted only to warn the visitor; issuance never depends on it.
func (g *Gate) Issue(ctx context.Context, sessionID, clientID, shortCode, referrer string) (*IssueResult, error) {
	const op = "usecase.Gate.Issue"

	link, err := g.links.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to retrieve link: %w", op, err)
	}
	if !link.IsActive {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	token, err := g.newToken()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	cred := entity.Credential{
		LinkCode: shortCode,
		Token:    token,
		IssuedAt: g.now().UTC(),
	}

	value, err := json.Marshal(storedCredential{Token: cred.Token, IssuedAt: cred.IssuedAt})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode credential: %w", op, err)
	}

	if err := g.sessions.Put(ctx, sessionID, credentialKeyPrefix+shortCode, string(value)); err != nil {
		return nil, fmt.Errorf("%s: failed to store credential: %w", op, err)
	}

	if referrer != "" {
		if err := g.sessions.Put(ctx, sessionID, referrerKeyPrefix+shortCode, referrer); err != nil {
			g.logger.Warn("failed to store referrer", slog.String("op", op), slog.Any("err", err))
		}
	}

	advisory, err := g.limiter.Check(ctx, clientID)
	if err != nil {
		g.logger.Warn("advisory limit check failed", slog.String("op", op), slog.Any("err", err))
		advisory = entity.Allowed()
	}

	return &IssueResult{
		Link:       link,
		Credential: cred,
		Advisory:   advisory,
	}, nil
}

// Redeem consumes the pending credential for (sessionID, shortCode). The stored
// credential is cleared whatever the outcome, so a token is accepted at most once.
func (g *Gate) Redeem(ctx context.Context, sessionID, shortCode, token string) (Redemption, error) {
	const op = "usecase.Gate.Redeem"

	value, ok, err := g.sessions.Take(ctx, sessionID, credentialKeyPrefix+shortCode)
	if err != nil {
		return Redemption{}, fmt.Errorf("%s: failed to take credential: %w", op, err)
	}

	referrer, _, err := g.sessions.Take(ctx, sessionID, referrerKeyPrefix+shortCode)
	if err != nil {
		g.logger.Warn("failed to take referrer", slog.String("op", op), slog.Any("err", err))
	}

	if !ok || token == "" {
		return Redemption{Outcome: entity.RedeemMismatch}, nil
	}

	var stored storedCredential
	if err := json.Unmarshal([]byte(value), &stored); err != nil {
		return Redemption{}, fmt.Errorf("%s: failed to decode credential: %w", op, err)
	}

	if subtle.ConstantTimeCompare([]byte(stored.Token), []byte(token)) != 1 {
		return Redemption{Outcome: entity.RedeemMismatch}, nil
	}

	return Redemption{
		Outcome:  entity.RedeemMatched,
		Referrer: referrer,
		IssuedAt: stored.IssuedAt,
	}, nil
}
