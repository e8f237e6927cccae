package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vadimbarashkov/linksplit/internal/entity"
)

// MsgInvalidToken is returned to a visitor presenting an unknown or replayed credential.
const MsgInvalidToken = "invalid or already used view token"

type geoLocator interface {
	Locate(ctx context.Context, ip string) entity.Location
}

type deviceParser interface {
	Parse(userAgent string) entity.Device
}

// IssueRequest describes a visitor opening the interstitial page of a link.
type IssueRequest struct {
	SessionID string
	ClientID  string
	ShortCode string
	Referrer  string
}

// CompleteViewRequest describes a visitor that waited out the interstitial.
type CompleteViewRequest struct {
	SessionID             string
	ClientID              string
	ShortCode             string
	Token                 string
	UserAgent             string
	Referrer              string // Referrer is used when none was captured at issue time.
	TimeToCompleteSeconds *int
}

// RedirectUseCase drives the two phases of a monetized redirect.
type RedirectUseCase struct {
	gate     *Gate
	links    linkFinder
	recorder *ViewRecorder
	geo      geoLocator
	devices  deviceParser
	logger   *slog.Logger
}

func NewRedirectUseCase(
	gate *Gate,
	links linkFinder,
	recorder *ViewRecorder,
	geo geoLocator,
	devices deviceParser,
	logger *slog.Logger,
) *RedirectUseCase {
	return &RedirectUseCase{
		gate:     gate,
		links:    links,
		recorder: recorder,
		geo:      geo,
		devices:  devices,
		logger:   logger,
	}
}

func (uc *RedirectUseCase) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	const op = "usecase.RedirectUseCase.Issue"

	res, err := uc.gate.Issue(ctx, req.SessionID, req.ClientID, req.ShortCode, req.Referrer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return res, nil
}

// CompleteView redeems the visitor's credential and records the view.
// Replayed or unknown tokens yield an unrecorded result with MsgInvalidToken.
func (uc *RedirectUseCase) CompleteView(ctx context.Context, req CompleteViewRequest) (entity.RecordResult, error) {
	const op = "usecase.RedirectUseCase.CompleteView"

	redemption, err := uc.gate.Redeem(ctx, req.SessionID, req.ShortCode, req.Token)
	if err != nil {
		return entity.RecordResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if redemption.Outcome != entity.RedeemMatched {
		uc.logger.Info("view token rejected",
			slog.String("short_code", req.ShortCode),
			slog.String("client_id", req.ClientID),
		)
		return entity.RecordResult{Message: MsgInvalidToken}, nil
	}

	link, err := uc.links.RetrieveByShortCode(ctx, req.ShortCode)
	if err != nil {
		return entity.RecordResult{}, fmt.Errorf("%s: failed to retrieve link: %w", op, err)
	}

	referrer := redemption.Referrer
	if referrer == "" {
		referrer = req.Referrer
	}

	device := uc.devices.Parse(req.UserAgent)
	location := uc.geo.Locate(ctx, req.ClientID)

	meta := entity.ViewMetadata{
		UserAgent:       req.UserAgent,
		DeviceType:      device.Type,
		Browser:         device.Browser,
		OperatingSystem: device.OperatingSystem,
		Country:         location.Country,
		Region:          location.Region,
		City:            location.City,
		Referrer:        referrer,
		SessionID:       req.SessionID,
	}

	res, err := uc.recorder.RecordView(ctx, link, req.ClientID, meta, req.TimeToCompleteSeconds)
	if err != nil {
		return entity.RecordResult{}, fmt.Errorf("%s: %w", op, err)
	}

	uc.logger.Info("view completed",
		slog.String("short_code", link.ShortCode),
		slog.Bool("recorded", res.Recorded),
		slog.Int64("view_count", res.ViewCount),
	)

	return res, nil
}
