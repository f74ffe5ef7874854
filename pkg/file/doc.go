// Package file implements the download trigger as a local downloads
// directory or an S3 bucket.
//
// LocalStorage.Save writes bytes under a sanitized file name inside its base
// directory and, like a browser, never overwrites: a second "qrcode.png"
// becomes "qrcode (1).png". S3Storage.Save applies the same naming rule to
// object keys under a prefix and uploads with a conditional put so a
// concurrent writer cannot be clobbered. Download on both adapts Save to the
// fire-and-forget signature used by the export actions.
//
// # Usage
//
//	downloads, err := file.NewLocalStorage("./downloads")
//	if err != nil {
//		return err
//	}
//	f, err := downloads.Save(ctx, "qrcode.svg", []byte(svg), "image/svg+xml;charset=utf-8")
//
// Publishing to a bucket:
//
//	bucket, err := file.NewS3Storage(ctx, file.S3Config{
//		Bucket: "codes",
//		Prefix: "qr/",
//		Region: "us-east-1",
//	})
//	f, err := bucket.Save(ctx, "qrcode.png", png, "image/png")
//	fmt.Println(f.Location()) // https://codes.s3.us-east-1.amazonaws.com/qr/qrcode.png
//
// Errors are package-level sentinels (ErrInvalidConfig, ErrInvalidPath,
// ErrAccessDenied, ...) wrapped with context; compare with errors.Is.
package file
