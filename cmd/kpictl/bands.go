package main

import (
	"context"
	"fmt"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-kpi/components/dashboard/queries"
	"github.com/goliatone/go-kpi/components/metrics"
)

type bandsCmd struct {
	Validate bandsValidateCmd `cmd:"" help:"Validate a band manifest file."`
	Show     bandsShowCmd     `cmd:"" help:"Print the effective band sets as a manifest."`
}

type bandsValidateCmd struct {
	File string `arg:"" type:"existingfile" help:"Band manifest to validate."`
}

func (cmd *bandsValidateCmd) Run(a *app) error {
	manifest, err := metrics.ReadBandManifest(cmd.File)
	if err != nil {
		return err
	}
	for _, set := range manifest.Sets {
		fmt.Fprintf(a.out, "✓ %s (%s, %d bands)\n", set.Name, set.Family, len(set.Bands))
	}
	return nil
}

type bandsShowCmd struct {
	File string `type:"existingfile" help:"Band manifest merged over the configured bands."`
}

func (cmd *bandsShowCmd) Run(ctx context.Context, a *app) error {
	reg, err := a.registry(ctx, cmd.File, nil)
	if err != nil {
		return err
	}
	catalog := reg.Bands()
	manifest := metrics.BandManifest{Version: metrics.BandManifestVersion}
	for _, name := range catalog.Names() {
		set, _ := catalog.Lookup(name)
		manifest.Sets = append(manifest.Sets, set)
	}
	return manifest.Encode(a.out)
}

type classifyCmd struct {
	Value float64 `arg:"" help:"Value to classify."`
	Bands string  `default:"rate" help:"Band set name."`
	File  string  `type:"existingfile" help:"Band manifest merged over the configured bands."`
}

func (cmd *classifyCmd) Run(ctx context.Context, a *app) error {
	reg, err := a.registry(ctx, cmd.File, nil)
	if err != nil {
		return err
	}
	class, err := queries.NewClassifyQuery(reg).Query(ctx, queries.ClassifyInput{Bands: cmd.Bands, Value: cmd.Value})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%v\t%s\t%s\n", cmd.Value, class.Level, class.CategoryKey)
	return nil
}

type widgetsCmd struct {
	Manifest []string `help:"Widget manifests to register (repeatable)."`
}

func (cmd *widgetsCmd) Run(ctx context.Context, a *app) error {
	reg, err := a.registry(ctx, "", cmd.Manifest)
	if err != nil {
		return err
	}
	for _, def := range reg.Definitions() {
		bands := def.Bands
		if bands == "" {
			bands = "-"
		}
		fmt.Fprintf(a.out, "%-32s %-20s %-12s %s\n", def.Code, strcase.ToCamel(def.Category), bands, def.Name)
	}
	return nil
}
