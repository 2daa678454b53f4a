package subsonic

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/koriwi/rocksonic/internal/model"
	"github.com/koriwi/rocksonic/internal/subsonic/dto"
)

const (
	// APIVersion is the protocol version sent with every request.
	APIVersion = "1.16.1"

	// DefaultClientName identifies rocksonic to the server.
	DefaultClientName = "rocksonic"

	defaultTimeout    = 60 * time.Second
	defaultMaxRetries = 10
	baseRetryDelay    = 500 * time.Millisecond
	maxRetryDelay     = 10 * time.Second
)

// Options configures a Client.
type Options struct {
	// Host is the REST base URL, usually ending in "/rest".
	Host string

	Username string
	Password string

	// LegacyAuth sends the hex-encoded password instead of a salted token,
	// for servers that predate token authentication.
	LegacyAuth bool

	// ClientName is sent as the "c" parameter. Defaults to DefaultClientName.
	ClientName string

	// Timeout bounds every HTTP request. Defaults to 60 seconds.
	Timeout time.Duration

	// MaxRetries is the number of retries after transport errors and 5xx
	// answers. Zero means the default of 10, negative disables retries.
	MaxRetries int

	// RequestsPerSecond paces requests across all workers. Zero disables
	// pacing.
	RequestsPerSecond float64

	// Logger receives retry diagnostics. Defaults to a discarding logger.
	Logger *log.Logger

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to a Subsonic compatible server.
//
// A Client is stateless per request and safe for concurrent use by the
// pipeline workers:
//
//	client, err := subsonic.Connect(ctx, subsonic.Options{
//	    Host:     "https://music.example.com/rest",
//	    Username: "me",
//	    Password: "secret",
//	})
//	if err != nil {
//	    return err // wraps ErrConnection
//	}
//	tracks, err := client.Favorites(ctx)
type Client struct {
	base       *url.URL
	opts       Options
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// New creates a Client without contacting the server.
func New(opts Options) (*Client, error) {
	host := strings.TrimRight(strings.TrimSpace(opts.Host), "/")
	if host == "" {
		return nil, errors.New("subsonic: host is required")
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("subsonic: invalid host %q: %w", opts.Host, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("subsonic: host %q must start with http:// or https://", opts.Host)
	}

	if opts.ClientName == "" {
		opts.ClientName = DefaultClientName
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	c := &Client{
		base:       base,
		opts:       opts,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: opts.Timeout}
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return c, nil
}

// Connect creates a Client and verifies it with Ping. Any failure is wrapped
// in ErrConnection.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	c, err := New(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	if err := c.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return c, nil
}

// Ping checks that the server answers and accepts the credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.getXML(ctx, "ping", nil)
	return err
}

// Favorites returns the starred songs in server order.
func (c *Client) Favorites(ctx context.Context) ([]model.Track, error) {
	resp, err := c.getXML(ctx, "getStarred2", nil)
	if err != nil {
		return nil, err
	}
	if resp.Starred2 == nil {
		return nil, nil
	}
	return dto.Tracks(resp.Starred2.Songs), nil
}

// Playlists returns the playlists visible to the user.
func (c *Client) Playlists(ctx context.Context) ([]dto.PlaylistSummary, error) {
	resp, err := c.getXML(ctx, "getPlaylists", nil)
	if err != nil {
		return nil, err
	}
	if resp.Playlists == nil {
		return nil, nil
	}
	return resp.Playlists.Playlists, nil
}

// Playlist returns the name and the entries of playlist id.
func (c *Client) Playlist(ctx context.Context, id string) (string, []model.Track, error) {
	resp, err := c.getXML(ctx, "getPlaylist", url.Values{"id": {id}})
	if err != nil {
		return "", nil, err
	}
	if resp.Playlist == nil {
		return "", nil, &Error{Code: CodeNotFound, Message: fmt.Sprintf("playlist %s not found", id), HTTPStatus: http.StatusOK}
	}
	return resp.Playlist.Name, dto.Tracks(resp.Playlist.Entries), nil
}

// CoverArt streams the cover art id scaled server-side to size pixels.
// A size of 0 requests the original. The caller closes the reader.
func (c *Client) CoverArt(ctx context.Context, id string, size int) (io.ReadCloser, error) {
	params := url.Values{"id": {id}}
	if size > 0 {
		params.Set("size", strconv.Itoa(size))
	}
	return c.getStream(ctx, "getCoverArt", params)
}

// Download streams the song id. With bitrate 0 the original file is
// returned; otherwise the server transcodes to MP3 at bitrate kbps.
func (c *Client) Download(ctx context.Context, id string, bitrate uint) (io.ReadCloser, error) {
	if bitrate == 0 {
		return c.getStream(ctx, "download", url.Values{"id": {id}})
	}
	return c.getStream(ctx, "stream", url.Values{
		"id":         {id},
		"format":     {model.TranscodeSuffix},
		"maxBitRate": {strconv.FormatUint(uint64(bitrate), 10)},
	})
}

// getXML performs a call whose answer is an XML envelope.
func (c *Client) getXML(ctx context.Context, endpoint string, params url.Values) (*dto.Response, error) {
	resp, err := c.do(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", endpoint, err)
	}
	return decodeEnvelope(endpoint, resp.StatusCode, body)
}

// getStream performs a call whose answer is binary. The server reports
// failures as an XML envelope, so XML bodies are decoded as errors.
func (c *Client) getStream(ctx context.Context, endpoint string, params url.Values) (io.ReadCloser, error) {
	resp, err := c.do(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK && !isXML(resp.Header.Get("Content-Type")) {
		return resp.Body, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", endpoint, err)
	}
	if _, err := decodeEnvelope(endpoint, resp.StatusCode, body); err != nil {
		return nil, err
	}
	return nil, &Error{HTTPStatus: resp.StatusCode, Message: fmt.Sprintf("%s: unexpected XML answer", endpoint)}
}

// do sends a GET request, retrying transport errors and 5xx answers with
// capped exponential backoff.
func (c *Client) do(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	reqURL := c.endpointURL(endpoint, params)

	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			delay := retryDelay(attempt)
			c.logger.Debug("retrying request", "endpoint", endpoint, "attempt", attempt, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("%s: create request: %w", endpoint, err)
		}
		req.Header.Set("User-Agent", c.opts.ClientName)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%s: %w", endpoint, redact(err))
			c.logger.Warn("request failed, will retry", "endpoint", endpoint, "attempt", attempt, "maxRetries", c.opts.MaxRetries, "err", lastErr)
			continue
		}

		if resp.StatusCode >= 500 && resp.StatusCode < 600 {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = &Error{HTTPStatus: resp.StatusCode}
			c.logger.Warn("server error, will retry", "endpoint", endpoint, "status", resp.StatusCode, "attempt", attempt, "maxRetries", c.opts.MaxRetries)
			continue
		}

		return resp, nil
	}

	c.logger.Error("request failed after retries", "endpoint", endpoint, "err", lastErr)
	return nil, lastErr
}

func (c *Client) endpointURL(endpoint string, params url.Values) *url.URL {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("v", APIVersion)
	q.Set("c", c.opts.ClientName)
	q.Set("u", c.opts.Username)
	if c.opts.LegacyAuth {
		q.Set("p", "enc:"+hex.EncodeToString([]byte(c.opts.Password)))
	} else {
		salt := strings.ReplaceAll(uuid.NewString(), "-", "")
		q.Set("t", Token(c.opts.Password, salt))
		q.Set("s", salt)
	}

	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + endpoint
	u.RawQuery = q.Encode()
	return &u
}

// Token returns the authentication token md5(password + salt) in hex.
func Token(password, salt string) string {
	sum := md5.Sum([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

func decodeEnvelope(endpoint string, status int, body []byte) (*dto.Response, error) {
	var env dto.Response
	if err := xml.Unmarshal(body, &env); err != nil {
		if status != http.StatusOK {
			return nil, &Error{HTTPStatus: status}
		}
		return nil, fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	if env.Status != dto.StatusOK {
		e := &Error{HTTPStatus: status}
		if env.Error != nil {
			e.Code = env.Error.Code
			e.Message = env.Error.Message
		}
		return nil, e
	}
	if status != http.StatusOK {
		return nil, &Error{HTTPStatus: status}
	}
	return &env, nil
}

func retryDelay(attempt int) time.Duration {
	shift := attempt - 1
	if shift > 5 {
		shift = 5
	}
	delay := baseRetryDelay * time.Duration(1<<shift)
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isXML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "text/xml" || mt == "application/xml"
}

// redact drops the request URL, which carries the credentials, from
// transport errors.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}
