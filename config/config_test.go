package config_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/csv2athena/config"
)

func lookupFrom(env map[string]string) config.LookupFunc {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

var _ = Describe("Config", func() {
	var env map[string]string

	BeforeEach(func() {
		env = map[string]string{
			"AthenaDbName": "reports",
			"OutputBucket": "s3://query-results/",
			"AwsAccountId": "123456789012",
		}
	})

	It("Should apply defaults", func() {
		cfg, err := config.Load(lookupFrom(env), "")
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Database).To(Equal("reports"))
		Expect(cfg.PollInterval).To(Equal(5 * time.Second))
		Expect(cfg.TagObjects).To(BeTrue())
		Expect(cfg.ObjectTagKey).To(Equal("Type"))
		Expect(cfg.ObjectTagValue).To(Equal("AthenaDataSet"))
		Expect(cfg.Routes).To(BeEmpty())
	})

	It("Should report missing mandatory values", func() {
		delete(env, "AthenaDbName")
		_, err := config.Load(lookupFrom(env), "")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("AthenaDbName"))
	})

	It("Should decode durations and booleans from the environment", func() {
		env["QueryTimeout"] = "2m"
		env["QueryPollMaxInterval"] = "10s"
		env["TagObjects"] = "false"
		cfg, err := config.Load(lookupFrom(env), "")
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.QueryTimeout).To(Equal(2 * time.Minute))
		Expect(cfg.PollMaxInterval).To(Equal(10 * time.Second))
		Expect(cfg.TagObjects).To(BeFalse())
	})

	It("Should accept the same switch words as the command line", func() {
		env["TagObjects"] = "yes"
		env["StackDump"] = "ON"
		cfg, err := config.Load(lookupFrom(env), "")
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.TagObjects).To(BeTrue())
		Expect(cfg.StackDump).To(BeTrue())

		env["TagObjects"] = "no"
		env["StackDump"] = "off"
		cfg, err = config.Load(lookupFrom(env), "")
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.TagObjects).To(BeFalse())
		Expect(cfg.StackDump).To(BeFalse())
	})

	It("Should build routes from the legacy variable pairs in order", func() {
		env["GamsBucketFolder"] = "gams"
		env["GamsQuicksightDatasetName"] = "GAMS Dataset"
		env["IamReportBucketFolder"] = "iam-report"
		env["IamQuicksightDatasetName"] = "IAM Dataset"
		cfg, err := config.Load(lookupFrom(env), "")
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Routes).To(Equal([]config.DatasetRoute{
			{SourceFolder: "iam-report", DatasetName: "IAM Dataset"},
			{SourceFolder: "gams", DatasetName: "GAMS Dataset"},
		}))
	})

	It("Should reject a half configured legacy pair", func() {
		env["AdUsersBucketFolder"] = "ad-users"
		_, err := config.Load(lookupFrom(env), "")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("datasetName"))
	})

	It("Should prefer the explicit route list", func() {
		env["IamReportBucketFolder"] = "iam-report"
		env["IamQuicksightDatasetName"] = "IAM Dataset"
		env["DatasetRoutes"] = `[{"sourceFolder": "grants", "datasetName": "Grants"}]`
		cfg, err := config.Load(lookupFrom(env), "")
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Routes).To(Equal([]config.DatasetRoute{{SourceFolder: "grants", DatasetName: "Grants"}}))
	})

	It("Should require an account id when routes are configured", func() {
		delete(env, "AwsAccountId")
		env["DatasetRoutes"] = "- sourceFolder: grants\n  datasetName: Grants\n"
		_, err := config.Load(lookupFrom(env), "")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("AwsAccountId"))
	})

	It("Should let the environment override the config file", func() {
		dir, err := ioutil.TempDir("", "csv2athena-config")
		Expect(err).ToNot(HaveOccurred())
		defer os.RemoveAll(dir)
		fileName := filepath.Join(dir, "config.yaml")
		contents := `
AthenaDbName: from_file
QueryPollInterval: 1s
DatasetRoutes:
  - sourceFolder: us-grants
    datasetName: US Grants
`
		Expect(ioutil.WriteFile(fileName, []byte(contents), 0644)).To(Succeed())
		cfg, err := config.Load(lookupFrom(env), fileName)
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Database).To(Equal("reports"))
		Expect(cfg.PollInterval).To(Equal(time.Second))
		Expect(cfg.Routes).To(HaveLen(1))
		Expect(cfg.Routes[0].DatasetName).To(Equal("US Grants"))
	})

	It("Should fail on a missing config file", func() {
		_, err := config.Load(lookupFrom(env), "/does/not/exist.yaml")
		Expect(err).To(HaveOccurred())
	})
})
