package browser

import (
	"io/ioutil"
	"net"
	"os"

	"github.com/pkg/errors"
)

// LeaserService hands out the debugger ports of running browsers
type LeaserService interface {
	Acquire() (string, error) // returns port number
	Return(port string) error
	Cleanup() (string, error)
	Count() (string, error)
}

// freePort asks the kernel for an unused tcp port for chrome's debugger to listen on
func freePort() (string, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return "", errors.Wrap(err, "no free port for the debugger")
	}
	defer l.Close()

	_, port, err := net.SplitHostPort(l.Addr().String())
	return port, err
}

// newProfile creates a throwaway chrome profile directory under root
func newProfile(root string) (string, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return "", errors.Wrapf(err, "creating profile root %s", root)
	}

	profile, err := ioutil.TempDir(root, "gcd")
	if err != nil {
		return "", errors.Wrapf(err, "creating profile under %s", root)
	}
	// an empty profile would make RemoveAll target the working directory
	if profile == "" {
		return "", errors.Errorf("empty profile directory under %s", root)
	}
	return profile, nil
}
