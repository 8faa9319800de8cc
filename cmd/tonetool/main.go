package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vearutop/tonemap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "gray":
		err = runGray(os.Args[2:])
	case "reflect":
		err = runReflect(os.Args[2:])
	case "clean":
		err = runClean(os.Args[2:])
	case "reapply":
		err = runReapply(os.Args[2:])
	case "meta":
		err = runMeta(os.Args[2:])
	case "suggest":
		err = runSuggest(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fail(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: tonetool <command> [args]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  gray    -in input.png -out output.png [-luma default|max|min]")
	fmt.Fprintln(os.Stderr, "  reflect -in input.png -out output.png (-anchors 64,128,192 | -count 3) [-mode average|partial] [-luma default] [-clean] [-meta] [-key anchors] [-z]")
	fmt.Fprintln(os.Stderr, "  clean   -in input.png -out output.png")
	fmt.Fprintln(os.Stderr, "  reapply -in input.png -from saved.png -out output.png [-key anchors] [-clean] [-meta]")
	fmt.Fprintln(os.Stderr, "  meta    -in saved.png [-key anchors] [-raw]")
	fmt.Fprintln(os.Stderr, "  suggest -in input.png [-n 3] [-method even|quantile|kmeans|dominant] [-luma default]")
	fmt.Fprintln(os.Stderr, "  stats   -in input.png [-luma default]")
	fmt.Fprintln(os.Stderr, "Common: [-workers 4] [-preview-out p.png] [-preview-size 512]")
}

type common struct {
	workers     int
	previewOut  string
	previewSize uint
}

func (c *common) register(fs *flag.FlagSet) {
	fs.IntVar(&c.workers, "workers", 1, "goroutines sharing image rows")
	fs.StringVar(&c.previewOut, "preview-out", "", "write a downscaled preview PNG")
	fs.UintVar(&c.previewSize, "preview-size", 512, "preview bounding box size")
}

func (c *common) apply(opt *tonemap.ProcessOptions) {
	workers := c.workers
	opt.Transform = append(opt.Transform, func(o *tonemap.Options) { o.Workers = workers })
	opt.PreviewOut = c.previewOut
	opt.PreviewWidth = c.previewSize
}

func runGray(args []string) error {
	fs := flag.NewFlagSet("gray", flag.ContinueOnError)
	inPath := fs.String("in", "", "input image")
	outPath := fs.String("out", "", "output PNG")
	lumaName := fs.String("luma", "default", "luma policy: default, max or min")
	var c common
	c.register(fs)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" {
		return errors.New("missing required arguments")
	}
	luma, ok := tonemap.ParseLumaPolicy(*lumaName)
	if !ok {
		return fmt.Errorf("unknown luma policy %q", *lumaName)
	}
	if err := tonemap.ProcessFile(*inPath, *outPath, []tonemap.Step{tonemap.GrayscaleStep(luma)}, c.apply); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "Image saved successfully to:", *outPath)
	return nil
}

func runReflect(args []string) error {
	fs := flag.NewFlagSet("reflect", flag.ContinueOnError)
	inPath := fs.String("in", "", "input image")
	outPath := fs.String("out", "", "output PNG")
	anchorList := fs.String("anchors", "", "comma separated anchors in [0, 255]")
	count := fs.Int("count", 0, "number of evenly spaced anchors when -anchors is empty")
	modeName := fs.String("mode", "average", "segmentation: average or partial")
	lumaName := fs.String("luma", "default", "luma policy: default, max or min")
	clean := fs.Bool("clean", false, "denoise after reflection")
	withMeta := fs.Bool("meta", false, "embed anchors metadata")
	key := fs.String("key", tonemap.DefaultMetadataKey, "metadata keyword")
	compress := fs.Bool("z", false, "store metadata in a compressed zTXt chunk")
	var c common
	c.register(fs)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" {
		return errors.New("missing required arguments")
	}

	params, err := parseParams(*anchorList, *count, *modeName, *lumaName)
	if err != nil {
		return err
	}
	steps := []tonemap.Step{tonemap.ReflectStep(params)}
	if *clean {
		steps = append(steps, tonemap.CleanStep())
	}
	err = tonemap.ProcessFile(*inPath, *outPath, steps, c.apply, func(opt *tonemap.ProcessOptions) {
		opt.EmbedAnchors = *withMeta
		opt.MetadataKey = *key
		opt.CompressMetadata = *compress
	})
	if err != nil {
		return err
	}
	if *withMeta {
		return verifyMeta(*outPath, *key)
	}
	fmt.Fprintln(os.Stdout, "Color reflection applied, saved to:", *outPath)
	return nil
}

func runClean(args []string) error {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	inPath := fs.String("in", "", "input image")
	outPath := fs.String("out", "", "output PNG")
	var c common
	c.register(fs)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" {
		return errors.New("missing required arguments")
	}
	if err := tonemap.ProcessFile(*inPath, *outPath, []tonemap.Step{tonemap.CleanStep()}, c.apply); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "Image cleaned successfully:", *outPath)
	return nil
}

func runReapply(args []string) error {
	fs := flag.NewFlagSet("reapply", flag.ContinueOnError)
	inPath := fs.String("in", "", "input image")
	fromPath := fs.String("from", "", "PNG carrying anchors metadata")
	outPath := fs.String("out", "", "output PNG")
	key := fs.String("key", tonemap.DefaultMetadataKey, "metadata keyword")
	clean := fs.Bool("clean", false, "denoise after reflection")
	withMeta := fs.Bool("meta", false, "embed anchors metadata")
	var c common
	c.register(fs)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *fromPath == "" || *outPath == "" {
		return errors.New("missing required arguments")
	}
	meta, ok, err := tonemap.ReadAnchorMetadataFile(*fromPath, *key, nil)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no %q anchors metadata in %s", *key, filepath.Base(*fromPath))
	}
	steps := []tonemap.Step{tonemap.ReflectStep(meta.Params())}
	if *clean {
		steps = append(steps, tonemap.CleanStep())
	}
	err = tonemap.ProcessFile(*inPath, *outPath, steps, c.apply, func(opt *tonemap.ProcessOptions) {
		opt.EmbedAnchors = *withMeta
		opt.MetadataKey = *key
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "Reapplied", tonemap.TextCodec{}.Encode(meta), "to", *outPath)
	return nil
}

func runMeta(args []string) error {
	fs := flag.NewFlagSet("meta", flag.ContinueOnError)
	inPath := fs.String("in", "", "PNG file")
	key := fs.String("key", tonemap.DefaultMetadataKey, "metadata keyword")
	raw := fs.Bool("raw", false, "print the stored text as is")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return errors.New("missing required arguments")
	}
	data, err := os.ReadFile(filepath.Clean(*inPath))
	if err != nil {
		return err
	}
	text, ok, err := tonemap.ReadText(data, *key)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(os.Stdout, "no metadata")
		return nil
	}
	if *raw {
		fmt.Fprintln(os.Stdout, text)
		return nil
	}
	d := tonemap.TextCodec{}.Decode(text)
	if d.Anchors == nil {
		log.Println("metadata warning: no valid anchors in", strconv.Quote(text))
	} else {
		fmt.Fprintln(os.Stdout, "anchors:", formatAnchors(d.Anchors))
	}
	if d.HasSegmentation {
		fmt.Fprintln(os.Stdout, "reflectionMode:", d.Segmentation)
	}
	if d.HasLuma {
		fmt.Fprintln(os.Stdout, "grayscaleMode:", d.Luma)
	}
	return nil
}

func runSuggest(args []string) error {
	fs := flag.NewFlagSet("suggest", flag.ContinueOnError)
	inPath := fs.String("in", "", "input image")
	n := fs.Int("n", 3, "number of anchors (1-10)")
	methodName := fs.String("method", "quantile", "even, quantile, kmeans or dominant")
	lumaName := fs.String("luma", "default", "luma policy: default, max or min")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return errors.New("missing required arguments")
	}
	method, ok := tonemap.ParseSuggestMethod(*methodName)
	if !ok {
		return fmt.Errorf("unknown suggest method %q", *methodName)
	}
	luma, ok := tonemap.ParseLumaPolicy(*lumaName)
	if !ok {
		return fmt.Errorf("unknown luma policy %q", *lumaName)
	}
	img, err := decodeFile(*inPath)
	if err != nil {
		return err
	}
	s, err := tonemap.SuggestAnchors(img, *n, method, luma)
	if err != nil {
		return err
	}
	if s.Method != method {
		log.Printf("suggest warning: %s found too few levels, falling back to %s", method, s.Method)
	}
	fmt.Fprintln(os.Stdout, formatAnchors(s.Anchors))
	return nil
}

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	inPath := fs.String("in", "", "input image")
	lumaName := fs.String("luma", "default", "luma policy: default, max or min")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return errors.New("missing required arguments")
	}
	luma, ok := tonemap.ParseLumaPolicy(*lumaName)
	if !ok {
		return fmt.Errorf("unknown luma policy %q", *lumaName)
	}
	img, err := decodeFile(*inPath)
	if err != nil {
		return err
	}
	st, err := tonemap.LumaStats(img, luma)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "size: %dx%d\nopaque: %d\n", img.Width, img.Height, st.Opaque)
	fmt.Fprintf(os.Stdout, "mean: %.2f\nstddev: %.2f\nmin: %.0f\nmedian: %.0f\nmax: %.0f\n",
		st.Mean, st.StdDev, st.Min, st.Median, st.Max)
	return nil
}

func parseParams(anchorList string, count int, modeName, lumaName string) (tonemap.Params, error) {
	var p tonemap.Params
	var ok bool
	if p.Segmentation, ok = tonemap.ParseSegmentationPolicy(modeName); !ok {
		return p, fmt.Errorf("unknown segmentation policy %q", modeName)
	}
	if p.Luma, ok = tonemap.ParseLumaPolicy(lumaName); !ok {
		return p, fmt.Errorf("unknown luma policy %q", lumaName)
	}
	switch {
	case anchorList != "":
		for _, item := range strings.Split(anchorList, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(item), 64)
			if err != nil {
				return p, fmt.Errorf("anchor %q: %w", item, err)
			}
			p.Anchors = append(p.Anchors, v)
		}
	case count > 0:
		p.Anchors = tonemap.EvenAnchors(count)
	default:
		return p, errors.New("missing -anchors or -count")
	}
	return p, p.Validate()
}

func verifyMeta(path, key string) error {
	meta, ok, err := tonemap.ReadAnchorMetadataFile(path, key, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "Image with anchors metadata saved to:", path)
	if !ok {
		log.Println("metadata warning: could not verify metadata after save")
		return nil
	}
	fmt.Fprintln(os.Stdout, "Metadata verified:", tonemap.TextCodec{}.Encode(meta))
	return nil
}

func decodeFile(path string) (*tonemap.PixelBuffer, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	return tonemap.DecodeImage(data)
}

func formatAnchors(a tonemap.AnchorSet) string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
