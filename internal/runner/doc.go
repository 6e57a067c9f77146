// Package runner invokes the external tools the build pipeline depends on.
//
// Every toolchain step (git, autoreconf, configure, make, perl, nmake, the
// installer builder) is an opaque process with an exit-code contract. A
// [Runner] starts the process in the logical working directory tracked by a
// [workdir.Stack], applies environment overrides on top of the inherited
// environment, and turns a nonzero exit into a [*CommandError]. There is no
// retry: a failed compile leaves toolchain state that cannot be trusted.
//
// In verbose mode child output is streamed to the terminal. Otherwise it is
// suppressed, and the tail of the output is kept so the failure can be
// reported.
//
// Example usage:
//
//	dirs, _ := workdir.New(".")
//	r := runner.New(dirs, false)
//
//	err := r.Run(ctx, runner.Command{
//	    Args: []string{"./configure", "--prefix=/usr/local/openvpn"},
//	    Env: runner.Env{
//	        "OPENSSL_CFLAGS": runner.Value("-I/stage/include"),
//	        "PKG_CONFIG_PATH": nil, // removed from the child environment
//	    },
//	})
package runner
