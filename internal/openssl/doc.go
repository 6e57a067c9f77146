// Package openssl builds the OQS fork of OpenSSL into the staging tree.
//
// On Unix hosts the library is configured, built, optionally tested, and
// installed relocatably below "<stage>/<prefix>". The Configure target is
// either computed by a platform script (the historic gentoo-config helper)
// or left to OpenSSL's own config script.
//
// On Windows the DLLs are built with MSVC for both x86 and x64. The 1.0.2
// build cannot be cleaned and reconfigured for another architecture, so
// each architecture builds in its own copy of the source tree. The MSVC
// environment is captured once per architecture from vcvarsall.bat and
// passed to nmake explicitly.
package openssl
