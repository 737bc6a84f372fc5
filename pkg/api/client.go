// Package api talks to the SuiteSpace back-office REST service. All
// collection payloads come back wrapped in a success envelope; the
// client unwraps them into generic records so the rest of the program
// never depends on per-collection schemas.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/suiteview/pkg/model"
)

// Environment selects which deployment the client talks to.
type Environment string

const (
	EnvProd Environment = "PROD"
	EnvTest Environment = "TEST"
)

// BaseURL returns the service root for the environment.
func (e Environment) BaseURL() string {
	if e == EnvTest {
		return "https://test.suitespace.co.nz/v1"
	}
	return "https://suitespace.co.nz/v1"
}

// DefaultSystemID is the tenant most installs run against.
const DefaultSystemID = 100

// Client is a thin bearer-token REST client. It is safe for concurrent
// use once the token is set.
type Client struct {
	baseURL  string
	token    string
	systemID int
	http     *http.Client
}

// New builds a client for the given service root. A zero systemID
// falls back to DefaultSystemID.
func New(baseURL string, systemID int) *Client {
	if systemID == 0 {
		systemID = DefaultSystemID
	}
	return &Client{
		baseURL:  baseURL,
		systemID: systemID,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken installs the bearer token used on subsequent requests.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current bearer token, empty before login.
func (c *Client) Token() string { return c.token }

// SystemID returns the tenant the client addresses.
func (c *Client) SystemID() int { return c.systemID }

type baseEnvelope struct {
	Success     bool   `json:"success"`
	Error       string `json:"error"`
	Description string `json:"description"`
}

type listEnvelope struct {
	baseEnvelope
	Objects []model.Record `json:"objects"`
}

type objectEnvelope struct {
	baseEnvelope
	Object model.Record `json:"object"`
}

// LoginResult carries the token issued by the service. Temporary
// tokens come from password-reset flows and expire quickly.
type LoginResult struct {
	baseEnvelope
	Token     string `json:"userToken"`
	Temporary bool   `json:"temporary"`
}

// Login exchanges credentials for a bearer token and installs it on
// the client.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]string{"emailAddress": email, "password": password}
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/user/login", body, &result); err != nil {
		return LoginResult{}, err
	}
	if !result.Success || result.Token == "" {
		return LoginResult{}, fmt.Errorf("login rejected: %s", firstNonEmpty(result.Error, result.Description, "no token issued"))
	}
	c.token = result.Token
	return result, nil
}

// CurrentUser fetches the profile behind the installed token.
func (c *Client) CurrentUser(ctx context.Context) (model.Record, error) {
	var user model.Record
	if err := c.do(ctx, http.MethodGet, "/user", nil, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// List fetches every record in a collection. An envelope without an
// objects array yields an empty slice, not an error.
func (c *Client) List(ctx context.Context, t model.EntityType) ([]model.Record, error) {
	var env listEnvelope
	if err := c.do(ctx, http.MethodGet, c.collectionPath(t), nil, &env); err != nil {
		return nil, err
	}
	if env.Objects == nil {
		return []model.Record{}, nil
	}
	return env.Objects, nil
}

// Get fetches a single record by id. A missing object in the envelope
// comes back as nil without an error.
func (c *Client) Get(ctx context.Context, t model.EntityType, id string) (model.Record, error) {
	var env objectEnvelope
	if err := c.do(ctx, http.MethodGet, c.recordPath(t, id), nil, &env); err != nil {
		return nil, err
	}
	if len(env.Object) == 0 {
		return nil, nil
	}
	return env.Object, nil
}

// Create posts a new record to a collection.
func (c *Client) Create(ctx context.Context, t model.EntityType, data model.Record) (model.Record, error) {
	var env objectEnvelope
	if err := c.do(ctx, http.MethodPost, c.collectionPath(t), data, &env); err != nil {
		return nil, err
	}
	return env.Object, nil
}

// Update replaces an existing record.
func (c *Client) Update(ctx context.Context, t model.EntityType, id string, data model.Record) (model.Record, error) {
	var env objectEnvelope
	if err := c.do(ctx, http.MethodPut, c.recordPath(t, id), data, &env); err != nil {
		return nil, err
	}
	return env.Object, nil
}

// Delete removes a record by id.
func (c *Client) Delete(ctx context.Context, t model.EntityType, id string) error {
	return c.do(ctx, http.MethodDelete, c.recordPath(t, id), nil, nil)
}

// FetchAll pulls every collection concurrently. The first failing
// collection cancels the rest; see Store for the tolerant variant.
func (c *Client) FetchAll(ctx context.Context) (model.Collections, error) {
	return fetchAll(ctx, c)
}

func (c *Client) collectionPath(t model.EntityType) string {
	return fmt.Sprintf("/system/%d/%s", c.systemID, t.Collection())
}

func (c *Client) recordPath(t model.EntityType, id string) string {
	return fmt.Sprintf("/system/%d/%s/%s", c.systemID, t.Collection(), id)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, endpoint, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d", method, endpoint, resp.StatusCode)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, endpoint, err)
	}
	return nil
}

func firstNonEmpty(candidates ...string) string {
	for _, s := range candidates {
		if s != "" {
			return s
		}
	}
	return ""
}
