package browser

import (
	"context"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// SocketLeaser asks a leaser daemon listening on a unix socket for browsers
type SocketLeaser struct {
	leaserClient http.Client
}

// NewSocketLeaser talking to the daemon at sock
func NewSocketLeaser(sock string) *SocketLeaser {
	s := &SocketLeaser{}
	s.leaserClient = http.Client{
		Transport: &http.Transport{
			DialContext: func(_ context.Context, _, _ string) (net.Conn, error) {
				return net.Dial("unix", sock)
			},
		},
	}
	return s
}

func (s *SocketLeaser) get(path string) (int, []byte, error) {
	resp, err := s.leaserClient.Get("http://unix" + path)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

// Acquire a new browser
func (s *SocketLeaser) Acquire() (string, error) {
	_, port, err := s.get("/acquire")
	if err != nil {
		return "", err
	}
	return string(port), nil
}

// Count how many browsers
func (s *SocketLeaser) Count() (string, error) {
	_, count, err := s.get("/count")
	if err != nil {
		return "", err
	}
	return string(count), nil
}

// Return (and kill) the browser
func (s *SocketLeaser) Return(port string) error {
	status, _, err := s.get("/return?port=" + url.QueryEscape(port))
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return errors.New("browser not found")
	}
	return nil
}

// Cleanup all old browser processes the daemon started
func (s *SocketLeaser) Cleanup() (string, error) {
	status, response, err := s.get("/cleanup")
	if err != nil {
		return "", err
	}

	if status == http.StatusInternalServerError {
		return "", errors.New(string(response))
	}

	return string(response), nil
}
