package edncodec_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ednfs/ednfs-cli/internal/edncodec"
	"github.com/ednfs/ednfs-cli/internal/tree"
)

var _ = Describe("Encode", func() {
	It("writes directory entries in directory order", func() {
		root := tree.NewDir(
			tree.Entry{Name: "c", Node: tree.Leaf{Value: "first"}},
			tree.Entry{Name: "a", Node: tree.NewDir()},
		)

		literal, err := edncodec.Encode(root)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(literal)).To(Equal("{:c \"first\", :a {}}\n"))
	})

	It("tags a map-shaped leaf value so it cannot read back as a directory", func() {
		root := tree.NewDir(
			tree.Entry{Name: "opaque", Node: tree.Leaf{Value: map[string]int{"inner": 1}}},
		)

		literal, err := edncodec.Encode(root)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(literal)).To(ContainSubstring(":leaf!"))

		decoded, err := edncodec.Decode(literal)
		Expect(err).NotTo(HaveOccurred())

		node, ok := decoded.Child("opaque")
		Expect(ok).To(BeTrue())
		Expect(node).To(BeAssignableToTypeOf(tree.Leaf{}))
	})

	It("rejects a directory key the literal grammar cannot carry", func() {
		root := tree.NewDir(
			tree.Entry{Name: "a}b", Node: tree.Leaf{Value: 1}},
		)

		_, err := edncodec.Encode(root)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("a}b"))
	})
})

var _ = Describe("Decode", func() {
	It("reads maps as directories and everything else as leaves", func() {
		root, err := edncodec.Decode([]byte(`{:a {:x "hello"} :b "flat" :c [1 2 3]}`))
		Expect(err).NotTo(HaveOccurred())

		node, ok := tree.Get(root, []string{"a"})
		Expect(ok).To(BeTrue())
		Expect(node).To(BeAssignableToTypeOf(&tree.Dir{}))

		node, ok = tree.Get(root, []string{"a", "x"})
		Expect(ok).To(BeTrue())
		Expect(node).To(Equal(tree.Leaf{Value: "hello"}))

		node, ok = tree.Get(root, []string{"b"})
		Expect(ok).To(BeTrue())
		Expect(node).To(Equal(tree.Leaf{Value: "flat"}))

		node, ok = tree.Get(root, []string{"c"})
		Expect(ok).To(BeTrue())
		Expect(node).To(BeAssignableToTypeOf(tree.Leaf{}))
	})

	It("records directory keys sorted", func() {
		root, err := edncodec.Decode([]byte(`{:b 1 :a 2 :c 3}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(root.Names()).To(Equal([]string{"a", "b", "c"}))
	})

	It("treats an empty map as an empty directory", func() {
		root, err := edncodec.Decode([]byte(`{}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(root.Len()).To(Equal(0))
	})

	It("rejects a top-level literal that is not a map", func() {
		_, err := edncodec.Decode([]byte(`42`))
		Expect(err).To(HaveOccurred())
	})

	It("rejects malformed input", func() {
		_, err := edncodec.Decode([]byte(`{:a`))
		Expect(err).To(HaveOccurred())
	})

	It("rejects string keys that are not atomic names", func() {
		_, err := edncodec.Decode([]byte(`{"a b" 1}`))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Round-trip", func() {
	It("preserves structure for trees built from a parsed literal", func() {
		literal := []byte(`{:dirs {:empty {} :nested {:leaf "v"}}
		                   :name "root"
		                   :nums [1 2 3]
		                   :kw :some-keyword
		                   :tagged {:leaf! {:inner 1}}}`)

		first, err := edncodec.Decode(literal)
		Expect(err).NotTo(HaveOccurred())

		encoded, err := edncodec.Encode(first)
		Expect(err).NotTo(HaveOccurred())

		second, err := edncodec.Decode(encoded)
		Expect(err).NotTo(HaveOccurred())

		Expect(tree.Equal(first, second)).To(BeTrue())
	})

	It("preserves structure for trees built in memory", func() {
		root := tree.NewDir(
			tree.Entry{Name: "a", Node: tree.NewDir(
				tree.Entry{Name: "x", Node: tree.Leaf{Value: "hello"}},
			)},
			tree.Entry{Name: "b", Node: tree.Leaf{Value: true}},
			tree.Entry{Name: "c", Node: tree.NewDir()},
		)

		encoded, err := edncodec.Encode(root)
		Expect(err).NotTo(HaveOccurred())

		decoded, err := edncodec.Decode(encoded)
		Expect(err).NotTo(HaveOccurred())

		Expect(tree.Equal(root, decoded)).To(BeTrue())
	})

	It("preserves structure when the insertion order is not sorted", func() {
		root := tree.NewDir(
			tree.Entry{Name: "b", Node: tree.Leaf{Value: "second"}},
			tree.Entry{Name: "a", Node: tree.Leaf{Value: "first"}},
		)

		encoded, err := edncodec.Encode(root)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(encoded)).To(Equal("{:b \"second\", :a \"first\"}\n"))

		decoded, err := edncodec.Decode(encoded)
		Expect(err).NotTo(HaveOccurred())

		Expect(decoded.Names()).To(Equal([]string{"a", "b"}))
		Expect(tree.Equal(root, decoded)).To(BeTrue())
	})
})

var _ = Describe("ToPlain", func() {
	It("converts directories to string-keyed maps", func() {
		root := tree.NewDir(
			tree.Entry{Name: "a", Node: tree.NewDir(
				tree.Entry{Name: "x", Node: tree.Leaf{Value: "v"}},
			)},
			tree.Entry{Name: "b", Node: tree.Leaf{Value: "w"}},
		)

		plain := edncodec.ToPlain(root)
		Expect(plain).To(Equal(map[string]any{
			"a": map[string]any{"x": "v"},
			"b": "w",
		}))
	})
})
