package property

import (
	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/pipe"
	"github.com/kbukum/convpipe/util"
)

// ProviderName is the name the path provider installs under.
const ProviderName = "paths"

// PathProvider installs ByPath in both converter tables.
type PathProvider struct {
	resolver *Resolver
}

// NewPathProvider creates a provider resolving against globals.
func NewPathProvider(globals map[string]any) *PathProvider {
	return &PathProvider{resolver: NewResolver(globals)}
}

// Resolver returns the provider's resolver.
func (p *PathProvider) Resolver() *Resolver { return p.resolver }

func (p *PathProvider) Name() string { return ProviderName }

// Install registers ByPath. The single argument is the path, quotes optional.
func (p *PathProvider) Install(b *pipe.Binder) error {
	if err := b.Register("ByPath", p.byPath); err != nil {
		return err
	}
	return b.RegisterNAry("ByPath", p.byPathN)
}

func (p *PathProvider) byPath(v any, args []string) (any, error) {
	path, err := pathArg(args)
	if err != nil {
		return nil, err
	}
	return p.resolver.Resolve(v, path, true)
}

func (p *PathProvider) byPathN(vs []any, args []string) (any, error) {
	path, err := pathArg(args)
	if err != nil {
		return nil, err
	}
	return p.resolver.Resolve(pipe.Collection(vs), path, true)
}

func pathArg(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.InvalidArgument("ByPath", "expect 1 argument: path")
	}
	return util.TrimQuotes(args[0]), nil
}
