package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// QueryTimeLayout formats the report timestamp in EC2 rows.
const QueryTimeLayout = "2006-01-02 15:04:05"

// EC2Headers are the column titles of the EC2 inventory, in order.
var EC2Headers = []string{
	"Name",
	"State",
	"Private IP",
	"Public IP",
	"VPC ID",
	"VPC Name",
	"Region",
	"Query Time (UTC)",
}

// EC2Row is one instance flattened for spreadsheet output.
type EC2Row struct {
	Name      string
	State     string
	PrivateIP string
	PublicIP  string
	VPCID     string
	VPCName   string
	Region    string
	QueryTime string
}

// Values returns the row's cells in EC2Headers order.
func (r EC2Row) Values() []string {
	return []string{r.Name, r.State, r.PrivateIP, r.PublicIP, r.VPCID, r.VPCName, r.Region, r.QueryTime}
}

// EC2Rows flattens the compute sets of report into one row per instance.
// Regions keep their report order and instances their collection order.
// Regions whose compute collector failed contribute no rows.
func EC2Rows(report *models.Report) []EC2Row {
	queryTime := report.GeneratedAt.UTC().Format(QueryTimeLayout)

	var rows []EC2Row
	for _, r := range report.Regions {
		if r.Compute == nil {
			continue
		}
		for _, inst := range r.Compute.Instances {
			rows = append(rows, EC2Row{
				Name:      inst.Name,
				State:     inst.State,
				PrivateIP: inst.PrivateIP,
				PublicIP:  inst.PublicIP,
				VPCID:     inst.VPCID,
				VPCName:   inst.VPCName,
				Region:    r.Region,
				QueryTime: queryTime,
			})
		}
	}
	return rows
}

// WriteCSV writes a header line followed by rows.
func WriteCSV(w io.Writer, rows []EC2Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EC2Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.Values()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
