package databuf_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestDatabuf(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, t.Name())
}
