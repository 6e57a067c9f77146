// Package pack turns the staged install tree into distributable artifacts.
//
// Unix targets get a gzip-compressed tarball of the whole staging root,
// owned by root, meant to be extracted at "/" on the target machine. Linux
// bundles also carry a setup script, a systemd unit, and placeholder etc
// and log directories. Windows targets get an NSIS installer produced by
// the openvpn-build scripts from source tarballs of the locally built
// components.
package pack
