package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"time"
)

// AllMeals returns the meals of userID around at. The backend answers with
// the whole month, callers filter to a day.
func (c *Client) AllMeals(ctx context.Context, userID string, at time.Time) ([]Meal, error) {
	const op = "meals.all"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	var meals []Meal
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   "/meals/all-meals/" + url.PathEscape(userID),
		query:  url.Values{"datetime": {at.UTC().Format("2006-01-02T15:04:05.000Z")}},
	}, &meals)
	if err != nil {
		return nil, err
	}
	return meals, nil
}

// LogMeal uploads a meal with its photos as multipart form data.
func (c *Client) LogMeal(ctx context.Context, f MealForm) error {
	const op = "meals.add"
	if err := requireUser(op, f.UserID); err != nil {
		return err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for i, img := range f.Images {
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("photo-%d.png", i+1)
		}
		if err := writeFilePart(mw, "images", name, imageContentType(name), img.Data); err != nil {
			return &Error{Op: op, Kind: KindInvalid, Err: err}
		}
	}
	fields := [][2]string{
		{"notes", f.Notes},
		{"date", f.Date.UTC().Format(time.RFC3339)},
		{"type", f.Type},
		{"rating", strconv.Itoa(f.Rating)},
		{"userId", f.UserID},
	}
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return &Error{Op: op, Kind: KindInvalid, Err: err}
		}
	}
	if err := mw.Close(); err != nil {
		return &Error{Op: op, Kind: KindInvalid, Err: err}
	}

	return c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		path:        "/meals/add-meal",
		body:        &body,
		contentType: mw.FormDataContentType(),
	}, nil)
}

func (c *Client) UpdateMeal(ctx context.Context, u MealUpdate) error {
	const op = "meals.update"
	if u.MealID == "" {
		return &Error{Op: op, Kind: KindInvalid, Err: errors.New("meal id is required")}
	}
	body, err := jsonBody(op, u)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		path:        "/meals/update-meal",
		body:        body,
		contentType: "application/json",
	}, nil)
}

// QuickAdd uploads a voice note; the backend turns it into a meal entry.
func (c *Client) QuickAdd(ctx context.Context, f QuickAddForm) error {
	const op = "meals.quick_add"
	if err := requireUser(op, f.UserID); err != nil {
		return err
	}
	if len(f.Audio) == 0 {
		return &Error{Op: op, Kind: KindInvalid, Err: errors.New("voice note is empty")}
	}

	name := f.FileName
	if name == "" {
		name = "quick-add.mdmemo"
	}
	// the mobile client sends the date JSON encoded, quotes included
	when, err := json.Marshal(f.Datetime.UTC())
	if err != nil {
		return &Error{Op: op, Kind: KindInvalid, Err: err}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := writeFilePart(mw, "audio-meal-note", name, "application/octet-stream", f.Audio); err != nil {
		return &Error{Op: op, Kind: KindInvalid, Err: err}
	}
	mw.WriteField("userId", f.UserID)
	mw.WriteField("datetime", string(when))
	if err := mw.Close(); err != nil {
		return &Error{Op: op, Kind: KindInvalid, Err: err}
	}

	r := request{
		op:          op,
		method:      http.MethodPost,
		path:        "/meals/quick-add",
		body:        &body,
		contentType: mw.FormDataContentType(),
	}
	if f.IdempotencyKey != "" {
		r.header = http.Header{"Idempotency-Key": {f.IdempotencyKey}}
	}
	return c.do(ctx, r, nil)
}

func writeFilePart(mw *multipart.Writer, field, name, contentType string, data []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filepath.Base(name)))
	h.Set("Content-Type", contentType)
	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func imageContentType(name string) string {
	switch filepath.Ext(name) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}
