package gate

import (
	"fmt"
	"os"

	"github.com/cx-foundry/cxsh/internal/grammar"
	"github.com/cx-foundry/cxsh/internal/schema"
	"github.com/cx-foundry/cxsh/internal/session"
)

// StaticFilter is Gate 2. Each candidate's command text is parsed with
// the shell grammar; candidates that fail to parse are dropped, as are
// connect commands whose target alias is already active (redundancy
// pruning). The surviving candidates keep their original order.
func StaticFilter(sess *session.State, options []schema.CommandOption) []schema.CommandOption {
	var valid []schema.CommandOption
	for _, opt := range options {
		cmd, err := grammar.Parse(opt.Command)
		if err != nil {
			fmt.Fprintf(os.Stderr, "agent: pruning option %q: %v\n", opt.Command, err)
			continue
		}
		if b, ok := cmd.(*grammar.Builtin); ok && b.Name == "connect" {
			if alias := b.ConnectAlias(); sess.AliasActive(alias) {
				fmt.Fprintf(os.Stderr, "agent: pruning redundant connect, alias %q is already active\n", alias)
				continue
			}
		}
		valid = append(valid, opt)
	}
	return valid
}
