package memoryfs_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	memoryfs "github.com/ednfs/ednfs-cli/internal/memoryfs"
)

var _ = Describe("MemoryFS", func() {
	var mfs *memoryfs.MemoryFS

	BeforeEach(func() {
		mfs = memoryfs.NewFS()
	})

	Describe("Create", func() {
		It("returns a file opened for writing", func() {
			file, err := mfs.Create("file.edn")
			Expect(err).To(BeNil())

			n, err := file.Write([]byte("hello"))
			Expect(err).To(BeNil())
			Expect(n).To(Equal(5))
		})

		It("respects cwd", func() {
			_, err := mfs.Create("file.edn")
			Expect(err).To(BeNil())

			entries := mfs.Entries()
			Expect(len(entries)).To(Equal(2))
			Expect(entries["/file.edn"]).NotTo(BeNil())

			err = mfs.MkdirAll("/path/to/wd")
			Expect(err).To(BeNil())

			err = mfs.Chdir("/path/to/wd")
			Expect(err).To(BeNil())

			_, err = mfs.Create("file2.edn")
			Expect(err).To(BeNil())
			entries = mfs.Entries()
			Expect(entries["/path/to/wd/file2.edn"]).NotTo(BeNil())
			Expect(entries["/file2.edn"]).To(BeNil())
		})

		It("truncates an existing file instead of failing", func() {
			file, err := mfs.Create("file.edn")
			Expect(err).To(BeNil())
			_, err = file.Write([]byte("first version"))
			Expect(err).To(BeNil())
			Expect(file.Close()).To(Succeed())

			file, err = mfs.Create("file.edn")
			Expect(err).To(BeNil())
			_, err = file.Write([]byte("second"))
			Expect(err).To(BeNil())
			Expect(file.Close()).To(Succeed())

			file, err = mfs.Open("file.edn")
			Expect(err).To(BeNil())
			Expect(readToString(file)).To(Equal("second"))
		})

		It("errors when a directory exists at path", func() {
			err := mfs.MkdirAll("path/to")
			Expect(err).To(BeNil())

			_, err = mfs.Create("path/to")
			Expect(err).To(HaveOccurred())
		})

		It("errors when the parent directory doesn't exist", func() {
			_, err := mfs.Create("missing/file.edn")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Open", func() {
		It("reads what was written", func() {
			file, err := mfs.Create("file.edn")
			Expect(err).To(BeNil())

			_, err = file.Write([]byte("hello, world!"))
			Expect(err).To(BeNil())
			Expect(file.Close()).To(Succeed())

			file, err = mfs.Open("file.edn")
			Expect(err).To(BeNil())
			Expect(readToString(file)).To(Equal("hello, world!"))
		})

		It("errors when the file doesn't exist", func() {
			_, err := mfs.Open("missing.edn")
			Expect(err).To(MatchError(memoryfs.ErrNotExist))
		})

		It("errors when the path is a directory", func() {
			err := mfs.MkdirAll("dir")
			Expect(err).To(BeNil())

			_, err = mfs.Open("dir")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ReadDir", func() {
		It("lists entries sorted by name", func() {
			Expect(mfs.MkdirAll("dir")).To(Succeed())

			for _, name := range []string{"dir/b.edn", "dir/a.edn"} {
				file, err := mfs.Create(name)
				Expect(err).To(BeNil())
				Expect(file.Close()).To(Succeed())
			}

			entries, err := mfs.ReadDir("dir")
			Expect(err).To(BeNil())
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Name()).To(Equal("a.edn"))
			Expect(entries[1].Name()).To(Equal("b.edn"))
		})

		It("errors when the path is not a directory", func() {
			file, err := mfs.Create("file.edn")
			Expect(err).To(BeNil())
			Expect(file.Close()).To(Succeed())

			_, err = mfs.ReadDir("file.edn")
			Expect(err).To(HaveOccurred())
		})

		It("lists only the direct children of the root", func() {
			file, err := mfs.Create("file.edn")
			Expect(err).To(BeNil())
			Expect(file.Close()).To(Succeed())

			Expect(mfs.MkdirAll("dir")).To(Succeed())
			nested, err := mfs.Create("dir/nested.edn")
			Expect(err).To(BeNil())
			Expect(nested.Close()).To(Succeed())

			entries, err := mfs.ReadDir("/")
			Expect(err).To(BeNil())
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Name()).To(Equal("dir"))
			Expect(entries[0].IsDir()).To(BeTrue())
			Expect(entries[1].Name()).To(Equal("file.edn"))
			Expect(entries[1].IsDir()).To(BeFalse())
		})
	})

	Describe("Exists", func() {
		It("reports files and directories", func() {
			exists, err := mfs.Exists("file.edn")
			Expect(err).To(BeNil())
			Expect(exists).To(BeFalse())

			file, err := mfs.Create("file.edn")
			Expect(err).To(BeNil())
			Expect(file.Close()).To(Succeed())

			exists, err = mfs.Exists("file.edn")
			Expect(err).To(BeNil())
			Expect(exists).To(BeTrue())
		})
	})

	Describe("Stat", func() {
		It("reports directories as directories", func() {
			Expect(mfs.MkdirAll("dir")).To(Succeed())

			info, err := mfs.Stat("dir")
			Expect(err).To(BeNil())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("errors for a missing path", func() {
			_, err := mfs.Stat("missing")
			Expect(err).To(MatchError(memoryfs.ErrNotExist))
		})
	})
})
