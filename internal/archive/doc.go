// Package archive creates and extracts gzip-compressed tar archives.
//
// Two implementations satisfy [Archiver]. [Builtin] writes archives in
// process with archive/tar and klauspost/compress; it always honors
// ownership normalization. [External] drives the system tar binary and
// normalizes ownership only when that binary advertises the --owner= and
// --group= options in its help output, since BSD tar does not.
//
// Members are named relative to a base directory, the same way "tar -C base
// name" names them. Archiving "." stores the contents of base without a
// leading directory, which is how the staged install tree is packed so it
// can be extracted at the filesystem root.
//
// Example:
//
//	a, _ := archive.New(archive.KindBuiltin, r)
//	err := a.Create(ctx, "images/pq-openvpn-2.4.4-linux.tar.gz", archive.Source{
//		Base:  "stage",
//		Name:  ".",
//		Owner: "root",
//	})
package archive
