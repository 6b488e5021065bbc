package cmdutil

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"genomecmp/internal/appshell"
	"genomecmp/internal/cli"
	"genomecmp/internal/version"
	"genomecmp/internal/writers"
)

// HandleParse handles help, version and usage errors the same way for
// every command. done reports whether the caller should return code.
func HandleParse(fs *pflag.FlagSet, kind cli.Kind, opts cli.Options, err error, outw *bufio.Writer, stderr io.Writer) (code int, done bool) {
	flush := func(ok int) (int, bool) {
		if e := outw.Flush(); e != nil && !writers.IsBrokenPipe(e) {
			_, _ = fmt.Fprintln(stderr, e)
			return appshell.ExitRuntime, true
		}
		return ok, true
	}
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			_ = cli.PrintUsage(outw, fs, kind)
			return flush(appshell.ExitOK)
		}
		_, _ = fmt.Fprintln(stderr, "error:", err)
		_ = cli.PrintUsage(outw, fs, kind)
		return flush(appshell.ExitUsage)
	}
	if opts.Version {
		_, _ = fmt.Fprintf(outw, "%s version %s\n", fs.Name(), version.Info())
		return flush(appshell.ExitOK)
	}
	return 0, false
}
