package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the tool's secrets in the OS keychain.
	KeyringService = "applysync"

	StartupJobs = "startupjobs"
	JazzHR      = "jazzhr"
)

// Names lists the tokens a run needs.
var Names = []string{StartupJobs, JazzHR}

var ErrNotFound = errors.New("token not found")

func envVar(name string) string {
	return "APPLYSYNC_" + strings.ToUpper(name) + "_TOKEN"
}

func known(name string) error {
	for _, n := range Names {
		if n == name {
			return nil
		}
	}
	return fmt.Errorf("unknown token %q (want one of %s)", name, strings.Join(Names, ", "))
}

// Token returns the named API token from the keyring, falling back to
// $APPLYSYNC_<NAME>_TOKEN.
func Token(name string) (string, error) {
	if err := known(name); err != nil {
		return "", err
	}
	tok, err := keyring.Get(KeyringService, name)
	if err == nil && strings.TrimSpace(tok) != "" {
		return strings.TrimSpace(tok), nil
	}
	if v := strings.TrimSpace(os.Getenv(envVar(name))); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s (set it with `applysync secrets set %s` or $%s)", ErrNotFound, name, name, envVar(name))
}

func SetToken(name, value string) error {
	if err := known(name); err != nil {
		return err
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(KeyringService, name, strings.TrimSpace(value))
}

func DeleteToken(name string) error {
	if err := known(name); err != nil {
		return err
	}
	err := keyring.Delete(KeyringService, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
