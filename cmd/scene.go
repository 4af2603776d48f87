package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/borealisgfx/borealis/scene/reader"
)

// Parse and validate a scene file and print a summary of its contents.
func DescribeScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Object", "Type", "Material", "Emissive", "Moving"})
	for idx, geom := range sc.Geometry {
		mat := sc.Materials[geom.MaterialID]
		table.Append([]string{
			fmt.Sprintf("%d", idx),
			geom.Type.String(),
			fmt.Sprintf("%d", geom.MaterialID),
			fmt.Sprintf("%t", mat.IsEmissive()),
			fmt.Sprintf("%t", geom.Velocity.Len() > 0),
		})
	}
	table.SetFooter([]string{
		"", "",
		fmt.Sprintf("%d materials", len(sc.Materials)),
		"",
		fmt.Sprintf("%dx%d", sc.Camera.ResX, sc.Camera.ResY),
	})
	table.Render()

	logger.Noticef("scene contents\n%s", buf.String())
	return nil
}
