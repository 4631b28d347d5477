// Package provision creates one OS account and gives it the fixed set of
// supplementary groups.
package provision

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hnrobert/ltspacct/internal/auth"
	"github.com/hnrobert/ltspacct/internal/usercmd"
)

var (
	ErrAlreadyExists = errors.New("account already exists")
	ErrSystem        = errors.New("account creation failed")
)

type Kind int

const (
	AlreadyExists Kind = iota + 1
	SystemError
)

func (k Kind) String() string {
	switch k {
	case AlreadyExists:
		return "already exists"
	case SystemError:
		return "system error"
	default:
		return "unknown"
	}
}

type ProvisionError struct {
	Username string
	Kind     Kind
	Err      error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provision %s: %s: %v", e.Username, e.Kind, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }

func (e *ProvisionError) Is(target error) bool {
	switch target {
	case ErrAlreadyExists:
		return e.Kind == AlreadyExists
	case ErrSystem:
		return e.Kind == SystemError
	}
	return false
}

// Commander is the subset of usercmd.Runner the provisioner needs.
type Commander interface {
	UserAdd(ctx context.Context, username, shell, passwordHash string) error
	AddToGroup(ctx context.Context, username, group string) error
}

type Provisioner struct {
	cmd    Commander
	hasher auth.Hasher
	shell  string
	groups []string
	log    *zap.SugaredLogger
}

func New(cmd Commander, hasher auth.Hasher, shell string, groups []string, log *zap.SugaredLogger) *Provisioner {
	return &Provisioner{
		cmd:    cmd,
		hasher: hasher,
		shell:  shell,
		groups: append([]string(nil), groups...),
		log:    log,
	}
}

// Provision creates username with a home directory and login shell, storing
// a hash of password, then adds the supplementary groups. Group failures are
// logged and leave the account in place.
func (p *Provisioner) Provision(ctx context.Context, username, password string) error {
	hash, err := p.hasher.Hash(password)
	if err != nil {
		return &ProvisionError{Username: username, Kind: SystemError, Err: fmt.Errorf("hash password: %w", err)}
	}
	if err := p.cmd.UserAdd(ctx, username, p.shell, hash); err != nil {
		kind := SystemError
		if errors.Is(err, usercmd.ErrNameInUse) {
			kind = AlreadyExists
		}
		return &ProvisionError{Username: username, Kind: kind, Err: err}
	}
	p.ApplyGroups(ctx, username)
	return nil
}

// ApplyGroups adds username to every configured group and returns the
// groups that could not be applied.
func (p *Provisioner) ApplyGroups(ctx context.Context, username string) []string {
	var failed []string
	for _, g := range p.groups {
		if err := p.cmd.AddToGroup(ctx, username, g); err != nil {
			p.log.Warnf("add %s to group %s: %v", username, g, err)
			failed = append(failed, g)
		}
	}
	return failed
}

func (p *Provisioner) Groups() []string {
	return append([]string(nil), p.groups...)
}
