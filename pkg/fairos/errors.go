package fairos

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fairos-dfs/sdk-go/internal/httpx"
)

// Domain sentinels. Every error returned by a Client method wraps exactly one
// of these, so callers can route on errors.Is without parsing messages.
var (
	// ErrCouldNotConnect wraps transport-level failures: the request never
	// produced a server response.
	ErrCouldNotConnect = errors.New("fairos: could not connect")

	// ErrNoSession is returned when a call needs a session token but the
	// session store holds none for the username.
	ErrNoSession = errors.New("fairos: no session for user")

	ErrUser       = errors.New("fairos: user")
	ErrPod        = errors.New("fairos: pod")
	ErrFileSystem = errors.New("fairos: filesystem")
	ErrKeyValue   = errors.New("fairos: key-value store")
	ErrDocument   = errors.New("fairos: document store")
)

// Well-known user errors, recognized by the server's message text and chained
// under ErrUser.
var (
	ErrUserNameAlreadyExists = fmt.Errorf("%w: user name already present", ErrUser)
	ErrInvalidUserName       = fmt.Errorf("%w: invalid user name", ErrUser)
	ErrInvalidPassword       = fmt.Errorf("%w: invalid password", ErrUser)
)

// knownMessages maps server message substrings to the sentinel they identify.
var knownMessages = []struct {
	substr   string
	sentinel error
}{
	{"user signup: user name already present", ErrUserNameAlreadyExists},
	{"user login: invalid user name", ErrInvalidUserName},
	{"user login: invalid password", ErrInvalidPassword},
}

// mapError classifies a transport-layer error under the given domain
// sentinel. Remote rejections keep their server message and code; transport
// failures become ErrCouldNotConnect.
func mapError(err error, domain error) error {
	if err == nil {
		return nil
	}
	if remote, ok := httpx.AsRemote(err); ok {
		for _, known := range knownMessages {
			if strings.Contains(remote.Message, known.substr) {
				return fmt.Errorf("%w: %w", known.sentinel, remote)
			}
		}
		return fmt.Errorf("%w: %w", domain, remote)
	}
	if httpx.IsTransport(err) {
		return fmt.Errorf("%w: %v", ErrCouldNotConnect, err)
	}
	return fmt.Errorf("%w: %v", domain, err)
}

// RemoteMessage extracts the raw server message from an error returned by any
// Client method, when the error originated from a server rejection.
func RemoteMessage(err error) (string, bool) {
	remote, ok := httpx.AsRemote(err)
	if !ok {
		return "", false
	}
	return remote.Message, true
}
