package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/arloliu/datatree/format"
	"github.com/arloliu/datatree/netcdf"
	"github.com/arloliu/datatree/treeio"
	"github.com/arloliu/datatree/zarr"
)

var (
	convertMode         = "w-"
	convertCompression  = "zstd"
	convertConsolidated = true
	convertInherit      = false
)

var convertCmd = &cobra.Command{
	Use:   "convert <nc-file> <zarr-dir>",
	Short: "copy every group of a netCDF container into a Zarr directory store",
	Long:  ``,
	Args:  cobra.ExactArgs(2),
	Run:   runConvert,
}

func runConvert(cmd *cobra.Command, args []string) {
	groups, err := convert(context.Background(), args[0], args[1])
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("wrote %d groups to %s\n", groups, args[1])
}

func convert(ctx context.Context, src, dst string) (int, error) {
	mode, err := format.ParseMode(convertMode)
	if err != nil {
		return 0, err
	}
	compression, err := format.ParseCompressionID(convertCompression)
	if err != nil {
		return 0, err
	}

	f, err := netcdf.OpenFile(src)
	if err != nil {
		return 0, err
	}
	t, err := f.Tree()
	if err != nil {
		return 0, err
	}

	writer, err := zarr.NewWriter(zarr.WithDefaultCompression(compression))
	if err != nil {
		return 0, err
	}

	err = treeio.WriteZarr(ctx, t, zarr.NewDirectoryStore(dst),
		treeio.WithZarrMode(mode),
		treeio.WithZarrGroupWriter(writer),
		treeio.WithConsolidated(convertConsolidated),
		treeio.WithZarrInheritedCoords(convertInherit),
	)
	if err != nil {
		return 0, err
	}

	return t.Len(), nil
}
