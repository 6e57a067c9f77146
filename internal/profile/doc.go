// Package profile holds the product profiles that parameterize a build.
//
// A profile pins everything that varies between releases of the product:
// repository URLs, branches and commits, directory names, the install
// prefix, extra linker flags, shared libraries bundled into the install
// tree, and installer file names. Profiles are YAML documents. The release
// and development profiles are embedded in the binary; users can add or
// override profiles by placing "<name>.yaml" files in the profiles
// directory under the XDG config home.
package profile
