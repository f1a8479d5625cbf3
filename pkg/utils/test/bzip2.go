package testutils

import (
	"os"
	"path/filepath"

	"github.com/dsnet/compress/bzip2"
	. "github.com/onsi/gomega"
)

// CompressBzip2 writes a bzip2 copy of src into dir and returns its path.
func CompressBzip2(src, dir string) string {
	data, err := os.ReadFile(src)
	Expect(err).NotTo(HaveOccurred())

	dst := filepath.Join(dir, filepath.Base(src)+".bz2")
	f, err := os.Create(dst)
	Expect(err).NotTo(HaveOccurred())
	defer f.Close()

	zw, err := bzip2.NewWriter(f, nil)
	Expect(err).NotTo(HaveOccurred())
	_, err = zw.Write(data)
	Expect(err).NotTo(HaveOccurred())
	Expect(zw.Close()).To(Succeed())

	return dst
}
