package matching

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/anjanakv868/Smart-Match/internal/reconcile"
)

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		extractor   *mockExtractor
		service     *Service
		server      *Server
		auth        BasicAuth
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		server = NewServerWithMux(service, auth, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	}

	BeforeEach(func() {
		db = newMockDB()
		extractor = newMockExtractor()
		service = NewService(db, extractor, newMockStorage())
		auth = BasicAuth{}
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	pairUpload := func() (*bytes.Buffer, string) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("invoice", "invoice.pdf")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write([]byte("%PDF-1.4 fake invoice"))
		Expect(err).NotTo(HaveOccurred())
		part, err = writer.CreateFormFile("po", "po.pdf")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write([]byte("%PDF-1.4 fake po"))
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Close()).To(Succeed())
		return body, writer.FormDataContentType()
	}

	Describe("handleCreateComparison", func() {
		When("both files are provided", func() {
			It("should create the comparison and return it", func() {
				body, contentType := pairUpload()
				resp, err := http.Post(ghttpServer.URL()+"/api/comparisons", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusCreated))

				var comparison Comparison
				Expect(json.NewDecoder(resp.Body).Decode(&comparison)).To(Succeed())
				Expect(comparison.Invoice.Identifier).To(Equal("INV-001"))
				Expect(comparison.PO.Identifier).To(Equal("PO-777"))
			})
		})

		When("the purchase order file is missing", func() {
			It("should return status Bad Request", func() {
				body := &bytes.Buffer{}
				writer := multipart.NewWriter(body)
				part, err := writer.CreateFormFile("invoice", "invoice.pdf")
				Expect(err).NotTo(HaveOccurred())
				_, err = part.Write([]byte("fake invoice"))
				Expect(err).NotTo(HaveOccurred())
				Expect(writer.Close()).To(Succeed())

				resp, err := http.Post(ghttpServer.URL()+"/api/comparisons", writer.FormDataContentType(), body)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		When("extraction fails", func() {
			BeforeEach(func() {
				extractor.extractErr = errors.New("model unavailable")
				setupServer()
			})

			It("should return status Bad Request with a JSON error", func() {
				body, contentType := pairUpload()
				resp, err := http.Post(ghttpServer.URL()+"/api/comparisons", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

				var errResp map[string]string
				Expect(json.NewDecoder(resp.Body).Decode(&errResp)).To(Succeed())
				Expect(errResp["error"]).To(ContainSubstring("model unavailable"))
			})
		})
	})

	Describe("handleListComparisons", func() {
		When("comparisons exist", func() {
			BeforeEach(func() {
				db.comparisons["id1"] = &Comparison{ID: "id1"}
				db.comparisons["id2"] = &Comparison{ID: "id2"}
			})

			It("should return all comparisons", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/comparisons")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var comparisons []*Comparison
				Expect(json.NewDecoder(resp.Body).Decode(&comparisons)).To(Succeed())
				Expect(comparisons).To(HaveLen(2))
			})
		})

		When("no comparisons exist", func() {
			It("should return an empty array", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/comparisons")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(strings.TrimSpace(string(body))).To(Equal("[]"))
			})
		})
	})

	Describe("handleGetComparison", func() {
		When("the comparison exists", func() {
			BeforeEach(func() {
				db.comparisons["test-id"] = &Comparison{ID: "test-id"}
			})

			It("should return the comparison", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/comparisons/test-id")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var comparison Comparison
				Expect(json.NewDecoder(resp.Body).Decode(&comparison)).To(Succeed())
				Expect(comparison.ID).To(Equal("test-id"))
			})
		})

		When("the comparison does not exist", func() {
			It("should return status Not Found", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/comparisons/nope")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
				resp.Body.Close()
			})
		})
	})

	Describe("handleUpdateDocument", func() {
		BeforeEach(func() {
			db.comparisons["test-id"] = &Comparison{
				ID:      "test-id",
				Invoice: extractorInvoice(extractor),
				PO:      extractorPO(extractor),
			}
		})

		putDocument := func(side, payload string) *http.Response {
			req, err := http.NewRequest("PUT", ghttpServer.URL()+"/api/comparisons/test-id/documents/"+side, strings.NewReader(payload))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			return resp
		}

		When("correcting the invoice", func() {
			It("should persist the corrected document", func() {
				resp := putDocument("invoice", `{"invoice_no": "INV-001", "vendor": "Corrected Vendor", "items": [], "total": 20.00}`)
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				saved, _ := db.GetComparison("test-id")
				Expect(saved.Invoice.Vendor).To(Equal("Corrected Vendor"))
			})
		})

		When("a quantity is not numeric", func() {
			It("should return status Bad Request naming the item", func() {
				resp := putDocument("invoice", `{"items": [{"description": "Widget A", "quantity": "lots", "price": 1.0}]}`)
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				var errResp map[string]string
				Expect(json.NewDecoder(resp.Body).Decode(&errResp)).To(Succeed())
				Expect(errResp["error"]).To(ContainSubstring("Widget A"))
			})
		})

		When("the side is unknown", func() {
			It("should return status Bad Request", func() {
				resp := putDocument("sideways", `{}`)
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})
		})
	})

	Describe("handleGetSummary", func() {
		When("the documents agree", func() {
			BeforeEach(func() {
				db.comparisons["test-id"] = &Comparison{
					ID:      "test-id",
					Invoice: extractorInvoice(extractor),
					PO:      extractorPO(extractor),
				}
			})

			It("should report a full match", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/comparisons/test-id/summary")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var report MatchReport
				Expect(json.NewDecoder(resp.Body).Decode(&report)).To(Succeed())
				Expect(report.Status).To(Equal(reconcile.StatusFullMatch))
				Expect(report.Summary.VendorMatch).To(BeTrue())
				Expect(report.Summary.MatchingItems).To(HaveLen(1))
			})
		})

		When("the vendors disagree", func() {
			BeforeEach(func() {
				invoice := extractorInvoice(extractor)
				invoice.Vendor = "Somebody Else Ltd."
				db.comparisons["test-id"] = &Comparison{
					ID:      "test-id",
					Invoice: invoice,
					PO:      extractorPO(extractor),
				}
			})

			It("should report a mismatch", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/comparisons/test-id/summary")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				var report MatchReport
				Expect(json.NewDecoder(resp.Body).Decode(&report)).To(Succeed())
				Expect(report.Status).To(Equal(reconcile.StatusMismatch))
			})
		})

		When("the comparison does not exist", func() {
			It("should return status Not Found", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/comparisons/nope/summary")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
				resp.Body.Close()
			})
		})
	})

	Describe("handleGetNarrative", func() {
		When("the comparison has discrepancies", func() {
			BeforeEach(func() {
				invoice := extractorInvoice(extractor)
				invoice.Total = 75.00
				db.comparisons["test-id"] = &Comparison{
					ID:      "test-id",
					Invoice: invoice,
					PO:      extractorPO(extractor),
				}
			})

			It("should return the generated narrative", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/comparisons/test-id/narrative")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var body map[string]string
				Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
				Expect(body["narrative"]).To(Equal(extractor.narrative))
			})
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "user", Password: "pass"}
			setupServer()
		})

		When("credentials are missing", func() {
			It("should return status Unauthorized", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/comparisons")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				resp.Body.Close()
			})
		})

		When("credentials are valid", func() {
			It("should allow the request", func() {
				req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/comparisons", nil)
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("user:pass")))
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})
		})
	})
})
