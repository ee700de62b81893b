package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hvdcmap/internal"
)

const ttlPrologue = `@prefix ex: <http://samsung.com/project-logistics#> .
@prefix email: <http://samsung.com/hvdc/email#> .
@prefix vendor: <http://samsung.com/hvdc/vendor#> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

email:Email rdf:type rdfs:Class .
email:PurchaseOrder rdf:type rdfs:Class .
email:DeliveryNotification rdf:type rdfs:Class .
vendor:Vendor rdf:type rdfs:Class .

email:hasSubject rdf:type rdf:Property .
email:hasSender rdf:type rdf:Property .
email:receivedTime rdf:type rdf:Property .
email:hasVendor rdf:type rdf:Property .
ex:hasCaseCode rdf:type rdf:Property .
ex:crossRefStatus rdf:type rdf:Property .
`

// ExportOntologyTTL writes the export rows as RDF triples in Turtle
// syntax, one email resource per distinct email with its case codes and
// resolved vendors attached.
func ExportOntologyTTL(rows []internal.CodeExportRow, outputPath string) error {
	byEmail := map[int][]internal.CodeExportRow{}
	order := []int{}
	for _, row := range rows {
		if _, seen := byEmail[row.EmailID]; !seen {
			order = append(order, row.EmailID)
		}
		byEmail[row.EmailID] = append(byEmail[row.EmailID], row)
	}
	sort.Ints(order)

	var b strings.Builder
	b.WriteString(ttlPrologue)

	vendors := map[string]struct{}{}
	for _, emailID := range order {
		group := byEmail[emailID]
		first := group[0]

		b.WriteString("\n")
		fmt.Fprintf(&b, "email:Email_%d rdf:type email:Email ;\n", emailID)
		fmt.Fprintf(&b, "    email:hasSubject \"%s\" ;\n", escapeTTL(first.Subject))
		fmt.Fprintf(&b, "    email:hasSender \"%s\" ;\n", escapeTTL(first.Sender))
		if first.ReceivedAt != "" {
			fmt.Fprintf(&b, "    email:receivedTime \"%s\"^^xsd:dateTime ;\n", escapeTTL(first.ReceivedAt))
		}

		stmts := []string{}
		for _, row := range group {
			stmts = append(stmts, fmt.Sprintf("    ex:hasCaseCode \"%s\"", escapeTTL(row.Code)))
			stmts = append(stmts, fmt.Sprintf("    ex:crossRefStatus \"%s\"", escapeTTL(row.CrossRefStatus)))
			if row.Vendor != nil && *row.Vendor != "" {
				stmts = append(stmts, "    email:hasVendor vendor:"+vendorResource(*row.Vendor))
				vendors[*row.Vendor] = struct{}{}
			}
		}
		b.WriteString(strings.Join(stmts, " ;\n"))
		b.WriteString(" .\n")
	}

	names := make([]string, 0, len(vendors))
	for name := range vendors {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > 0 {
		b.WriteString("\n")
	}
	for _, name := range names {
		fmt.Fprintf(&b, "vendor:%s rdf:type vendor:Vendor ;\n", vendorResource(name))
		fmt.Fprintf(&b, "    rdfs:label \"%s\" .\n", escapeTTL(name))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte(b.String()), 0o644)
}

func vendorResource(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func escapeTTL(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return r.Replace(s)
}
