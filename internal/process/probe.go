package process

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/cybersonic/lucli/internal/manifest"
)

// dialHost resolves the manifest's bind host to something dialable from
// this process: a server bound to 0.0.0.0 (or left unset) is reached
// through localhost, never through the literal wildcard address.
func dialHost(host string) string {
	if host == "" || host == "0.0.0.0" || host == "::" {
		return "localhost"
	}
	return host
}

// awaitReady implements §4.8 step 3: poll the primary port until a TCP
// connection succeeds or readyTimeout elapses, then require a non-5xx
// response from an HTTP GET / within httpTimeout. Progress is narrated
// onto sup, the supervisor log, so a failed start leaves a record of
// every attempt.
func (c *Controller) awaitReady(ctx context.Context, m *manifest.Manifest, sup io.Writer) error {
	addr := net.JoinHostPort(dialHost(m.Host), strconv.Itoa(m.Port))

	if err := c.waitTCP(ctx, addr, sup); err != nil {
		return fmt.Errorf("process: port %s never accepted a connection: %w", addr, err)
	}
	fmt.Fprintf(sup, "tcp connect to %s succeeded\n", addr)

	if err := c.waitHTTP(ctx, addr, sup); err != nil {
		return fmt.Errorf("process: GET http://%s/ never returned a healthy response: %w", addr, err)
	}
	fmt.Fprintf(sup, "http GET / on %s succeeded\n", addr)
	return nil
}

func (c *Controller) waitTCP(ctx context.Context, addr string, sup io.Writer) error {
	tcpCtx, cancel := context.WithTimeout(ctx, c.readyTimeout)
	defer cancel()

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 200 * time.Millisecond
	eb.MaxInterval = 2 * time.Second
	eb.MaxElapsedTime = 0 // bounded by tcpCtx instead

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		var d net.Dialer
		conn, err := d.DialContext(tcpCtx, "tcp", addr)
		if err != nil {
			fmt.Fprintf(sup, "tcp probe %s attempt %d: %v\n", addr, attempt, err)
			return err
		}
		_ = conn.Close()
		return nil
	}, backoff.WithContext(eb, tcpCtx))
}

func (c *Controller) waitHTTP(ctx context.Context, addr string, sup io.Writer) error {
	httpCtx, cancel := context.WithTimeout(ctx, c.httpTimeout)
	defer cancel()

	url := "http://" + addr + "/"
	client := &http.Client{
		Timeout: 3 * time.Second,
		// A redirect to https (https.redirect:true) is itself the
		// readiness signal on the primary port; following it would hop
		// onto the generated self-signed certificate, which this
		// client has no reason to trust. Report the 3xx as-is instead.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 200 * time.Millisecond
	eb.MaxInterval = 1 * time.Second
	eb.MaxElapsedTime = 0

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		req, err := http.NewRequestWithContext(httpCtx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			fmt.Fprintf(sup, "http probe %s attempt %d: %v\n", url, attempt, err)
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			fmt.Fprintf(sup, "http probe %s attempt %d: status %d\n", url, attempt, resp.StatusCode)
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		return nil
	}, backoff.WithContext(eb, httpCtx))
}
