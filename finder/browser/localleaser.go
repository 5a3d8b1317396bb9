package browser

import (
	"os"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
)

// leasedBrowser is a chrome process this leaser started along with the profile it made for it
type leasedBrowser struct {
	debugger *gcd.Gcd
	profile  string
}

// LocalLeaser starts chrome processes on this host. It only ever stops the processes and
// removes the profiles it created itself.
type LocalLeaser struct {
	browserLock sync.RWMutex
	browsers    map[string]*leasedBrowser
	chrome      string
	profileRoot string
}

// NewLocalLeaser for chrome at chromePath keeping profiles under profileDir, empty values use
// the per OS defaults from FindChrome
func NewLocalLeaser(chromePath, profileDir string) *LocalLeaser {
	chrome, profileRoot := FindChrome()
	if chromePath != "" {
		chrome = chromePath
	}
	if profileDir != "" {
		profileRoot = profileDir
	}
	return &LocalLeaser{
		browsers:    make(map[string]*leasedBrowser),
		chrome:      chrome,
		profileRoot: profileRoot,
	}
}

// Acquire starts a new chrome and returns its debugger port
func (s *LocalLeaser) Acquire() (string, error) {
	profile, err := newProfile(s.profileRoot)
	if err != nil {
		return "", err
	}

	port, err := freePort()
	if err != nil {
		removeProfile(profile)
		return "", err
	}

	b := gcd.NewChromeDebugger()
	b.DeleteProfileOnExit()
	b.AddFlags(startupFlags)
	if err := b.StartProcess(s.chrome, profile, port); err != nil {
		removeProfile(profile)
		return "", errors.Wrapf(err, "failed to start %s", s.chrome)
	}

	s.browserLock.Lock()
	s.browsers[port] = &leasedBrowser{debugger: b, profile: profile}
	s.browserLock.Unlock()

	log.Debug().Str("port", port).Str("profile", profile).Msg("started chrome")
	return port, nil
}

// Count of running browsers this leaser started
func (s *LocalLeaser) Count() (string, error) {
	s.browserLock.RLock()
	count := len(s.browsers)
	s.browserLock.RUnlock()
	return strconv.Itoa(count), nil
}

// Return stops the chrome listening on port and removes its profile
func (s *LocalLeaser) Return(port string) error {
	s.browserLock.Lock()
	leased, ok := s.browsers[port]
	delete(s.browsers, port)
	s.browserLock.Unlock()

	if !ok {
		return errors.Errorf("no browser leased on port %s", port)
	}
	return leased.stop()
}

// Cleanup stops every chrome this leaser started and removes their profiles. Browsers it did
// not start are left alone.
func (s *LocalLeaser) Cleanup() (string, error) {
	s.browserLock.Lock()
	leased := s.browsers
	s.browsers = make(map[string]*leasedBrowser)
	s.browserLock.Unlock()

	var lastErr error
	for port, b := range leased {
		if err := b.stop(); err != nil {
			log.Warn().Err(err).Str("port", port).Msg("failed to stop browser")
			lastErr = err
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "ok", nil
}

func (b *leasedBrowser) stop() error {
	defer removeProfile(b.profile)
	if err := b.debugger.ExitProcess(); err != nil {
		return errors.Wrap(err, "stopping chrome")
	}
	return nil
}

func removeProfile(profile string) {
	if err := os.RemoveAll(profile); err != nil {
		log.Warn().Err(err).Str("profile", profile).Msg("failed to remove profile")
	}
}
