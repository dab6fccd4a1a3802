package main

import (
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/arloliu/datatree/dataset"
	"github.com/arloliu/datatree/netcdf"
	"github.com/arloliu/datatree/tree"
	"github.com/arloliu/datatree/zarr"
)

var showAttrs = false

var ncCmd = &cobra.Command{
	Use:   "nc <file>",
	Short: "list the groups and variables of a netCDF container",
	Long:  ``,
	Args:  cobra.ExactArgs(1),
	Run:   runNC,
}

var zarrCmd = &cobra.Command{
	Use:   "zarr <dir>",
	Short: "list the groups and variables of a Zarr directory store",
	Long:  ``,
	Args:  cobra.ExactArgs(1),
	Run:   runZarr,
}

func runNC(cmd *cobra.Command, args []string) {
	f, err := netcdf.OpenFile(args[0])
	if err != nil {
		log.Fatal(err)
	}
	t, err := f.Tree()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("container %s: format %s, engine %s\n", f.ID, f.Format, f.Engine)
	renderTree(os.Stdout, t, showAttrs)
}

func runZarr(cmd *cobra.Command, args []string) {
	t, err := zarr.ReadTree(zarr.NewDirectoryStore(args[0]))
	if err != nil {
		log.Fatal(err)
	}

	renderTree(os.Stdout, t, showAttrs)
}

// renderTree prints one row per variable, groups in pre-order. Empty groups
// get a single row without variable columns.
func renderTree(w io.Writer, t *tree.Tree, attrs bool) {
	tbl := tablewriter.NewWriter(w)
	header := []string{"Group", "Variable", "Role", "DType", "Dims", "Shape"}
	if attrs {
		header = append(header, "Attrs")
	}
	tbl.SetHeader(header)

	for n := range t.Subtree() {
		ds := n.Dataset()
		if ds.Len() == 0 {
			row := []string{n.Path(), "", "", "", "", ""}
			if attrs {
				row = append(row, formatAttrs(ds.Attrs))
			}
			tbl.Append(row)

			continue
		}

		for i, name := range ds.VariableNames() {
			v, isCoord, _ := ds.Variable(name)
			role := "data"
			if isCoord {
				role = "coord"
			}
			row := []string{
				n.Path(),
				name,
				role,
				v.Data.DType().String(),
				strings.Join(v.Dims, ","),
				fmt.Sprint(v.Shape),
			}
			if attrs {
				a := formatAttrs(v.Attrs)
				if i == 0 && len(ds.Attrs) > 0 {
					a = strings.TrimSpace("group{" + formatAttrs(ds.Attrs) + "} " + a)
				}
				row = append(row, a)
			}
			tbl.Append(row)
		}
	}

	tbl.Render()
}

func formatAttrs(attrs dataset.Attrs) string {
	parts := make([]string, 0, len(attrs))
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		parts = append(parts, k+"="+attrs[k])
	}

	return strings.Join(parts, " ")
}
