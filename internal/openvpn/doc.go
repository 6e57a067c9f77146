// Package openvpn builds OpenVPN against the staged OpenSSL and installs it
// into the staging tree.
//
// The OpenSSL location is injected through OPENSSL_CFLAGS and OPENSSL_LIBS
// rather than discovered by pkg-config, so the build links the freshly
// staged library and never a system one. Linux builds embed an rpath to the
// install prefix. Windows targets are cross compiled with mingw.
package openvpn
