package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

var stravaEndpoint = oauth2.Endpoint{
	AuthURL:  "https://www.strava.com/oauth/mobile/authorize",
	TokenURL: "https://www.strava.com/oauth/token",
}

// StravaOAuthConfig describes the Strava authorization the user grants.
// The code it yields is exchanged by the backend, see CreateStravaAccessToken.
func StravaOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     stravaEndpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{"activity:read_all"},
	}
}

// NewStravaTokenRequest builds the exchange request for an authorization code.
func NewStravaTokenRequest(cfg *oauth2.Config, userID, code string) StravaTokenRequest {
	return StravaTokenRequest{
		Code:         code,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		GrantType:    "authorization_code",
		UserID:       userID,
	}
}

func (c *Client) StravaActivities(ctx context.Context, userID string) (*StravaData, error) {
	const op = "workouts.activities"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	var data StravaData
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   "/workouts/strava-activities/" + url.PathEscape(userID),
	}, &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) CreateStravaAccessToken(ctx context.Context, r StravaTokenRequest) error {
	const op = "workouts.strava_token"
	if err := requireUser(op, r.UserID); err != nil {
		return err
	}
	if r.Code == "" {
		return &Error{Op: op, Kind: KindInvalid, Err: errors.New("authorization code is required")}
	}
	body, err := jsonBody(op, r)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		path:        "/workouts/create-strava-access-token",
		body:        body,
		contentType: "application/json",
	}, nil)
}
