package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// filterUnknownFlags drops '-'-prefixed tokens that flags does not define,
// warning about each on warn. Values of known flags are kept with their
// flag, "--" ends filtering, and a lone "-" is a positional argument.
func filterUnknownFlags(flags *pflag.FlagSet, args []string, warn io.Writer) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return append(out, args[i:]...)

		case strings.HasPrefix(arg, "--"):
			name, _, hasValue := strings.Cut(arg[2:], "=")
			f := flags.Lookup(name)
			if f == nil {
				fmt.Fprintf(warn, "Warning: ignoring unrecognized option %s\n", arg)
				continue
			}
			out = append(out, arg)
			if !hasValue && takesValue(f) && i+1 < len(args) {
				i++
				out = append(out, args[i])
			}

		case len(arg) > 1 && arg[0] == '-':
			kept, consumeNext := filterShorthands(flags, arg[1:], warn)
			if kept != "" {
				out = append(out, "-"+kept)
			}
			if consumeNext && i+1 < len(args) {
				i++
				out = append(out, args[i])
			}

		default:
			out = append(out, arg)
		}
	}
	return out
}

// filterShorthands keeps the known letters of a "-abc" cluster. A letter
// that takes a value ends the cluster; if nothing follows it, the value is
// the next argument.
func filterShorthands(flags *pflag.FlagSet, cluster string, warn io.Writer) (kept string, consumeNext bool) {
	var b strings.Builder
	for j := 0; j < len(cluster); j++ {
		f := flags.ShorthandLookup(cluster[j : j+1])
		if f == nil {
			fmt.Fprintf(warn, "Warning: ignoring unrecognized option -%s\n", cluster[j:j+1])
			continue
		}
		b.WriteByte(cluster[j])
		if takesValue(f) {
			b.WriteString(cluster[j+1:])
			return b.String(), j+1 == len(cluster)
		}
	}
	return b.String(), false
}

func takesValue(f *pflag.Flag) bool {
	return f.NoOptDefVal == ""
}
