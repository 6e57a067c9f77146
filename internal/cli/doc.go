// Parses flags, configures logging, and dispatches the pqbuild commands.
//
// The tool accepts the following global flags:
//
//	-q, --quiet       Suppress informational output.
//	-v, --verbose     Stream the output of external tools.
//	-d, --debug       Enable debug output.
//	    --log-format  Log format, pretty or json.
//
// Running pqbuild without a command runs the build. Build flags can also be
// set through PQBUILD_* environment variables; flags win over the
// environment. After parsing, the global logger is reconfigured to reflect
// the final level and format before the command runs.
package cli
