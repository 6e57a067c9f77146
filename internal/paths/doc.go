// Provides the filesystem layout used by the build pipeline.
//
// Working areas (sources, build, stage, images) default to directories
// beside the current working directory, mirroring how the build has always
// been run from a checkout. User-provided product profiles are looked up
// under the XDG configuration directory, with "pqbuild" as the subdirectory:
//
//	Linux:   $XDG_CONFIG_HOME/pqbuild/profiles
//	macOS:   ~/Library/Application Support/pqbuild/profiles
//	Windows: %LOCALAPPDATA%\pqbuild\profiles
package paths
