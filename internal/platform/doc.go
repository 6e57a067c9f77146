// Package platform decides which build stages run for a target platform on
// a given host.
//
// Not every target can be built everywhere. The OpenSSL DLLs for Windows
// need MSVC and are built on a Windows host, while the Windows OpenVPN
// installer is cross compiled with mingw and NSIS on Linux. [Select] holds
// that routing as a lookup table; the pipeline applies the returned
// [Strategy] and never tests host or target itself.
package platform
