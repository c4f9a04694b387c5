package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hesusruiz/vcutils/yaml"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"texpage/tex"
)

var debug bool

// pageTemplate wraps the rendered fragment stream into a standalone page.
// MathJax typesets the verbatim equation bodies in the browser.
const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset='utf-8'>
<title>TITLE_GOES_HERE</title>
<script>
MathJax = { tex: { inlineMath: [['$', '$']] } };
</script>
<script async src='https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-chtml.js'></script>
<style>
body { max-width: 50em; margin: 2em auto; font-family: sans-serif; line-height: 1.5; }
.equation { position: relative; margin: 1em 0; }
.eqno { position: absolute; right: 0; top: 50%; }
figure { text-align: center; }
.subfloat { display: inline-block; margin: 0 1em; }
.todo { background: #ffe08a; }
.ref-unresolved { color: #c00; font-weight: bold; }
.theorem { margin: 1em 0; padding: 0.5em 1em; border-left: 3px solid #888; }
details.proof { margin: 0.5em 0; }
table { border-collapse: collapse; margin: 0 auto; }
td, th { border: 1px solid #999; padding: 0.3em 0.6em; }
</style>
</head>
<body>
HERE_GOES_THE_CONTENT
</body>
</html>
`

// fileResolver retrieves \input targets from the filesystem, relative to
// the directory of the main input file. A missing .tex extension is added.
type fileResolver struct {
	baseDir string
}

func (r fileResolver) ReadInclude(name string) ([]byte, error) {
	if path.Ext(name) == "" {
		name = name + ".tex"
	}
	return os.ReadFile(filepath.Join(r.baseDir, name))
}

// retrieveBiblioData looks for bibliography data in a localbiblio.yaml file
// next to the input document. The front matter "localBiblio" tag, when
// present, takes precedence inside the renderer.
func retrieveBiblioData(inputFileName string, sugar *zap.SugaredLogger) *yaml.YAML {

	dir, _ := filepath.Split(inputFileName)

	fullFileName := filepath.Join(dir, "localbiblio.yaml")
	bibData, err := yaml.ParseYamlFile(fullFileName)
	if err == nil {
		sugar.Debugw("reading biblio data", "file", fullFileName)
		return bibData
	}

	return nil
}

// renderFile runs the full pipeline on one input file and writes the HTML
// page and, optionally, the navigation index.
func renderFile(inputFileName, outputFileName, navFileName string, sugar *zap.SugaredLogger) error {

	src, err := os.ReadFile(inputFileName)
	if err != nil {
		return err
	}

	p := tex.NewParser(sugar, fileResolver{baseDir: filepath.Dir(inputFileName)})

	if bib := retrieveBiblioData(inputFileName, sugar); bib != nil {
		p.SetBibliography(bib)
	}

	res, err := p.Render(inputFileName, src)
	if err != nil {
		return err
	}

	// Degradations are reported but never stop the render
	if warns := p.Warnings(); warns != nil {
		for _, line := range strings.Split(warns.Error(), "; ") {
			fmt.Println("warning:", line)
		}
	}

	title := res.Title
	if title == "" {
		title = inputFileName
	}
	page := strings.Replace(pageTemplate, "TITLE_GOES_HERE", title, 1)
	page = strings.Replace(page, "HERE_GOES_THE_CONTENT", res.HTML, 1)

	if err := os.WriteFile(outputFileName, []byte(page), 0664); err != nil {
		return err
	}

	if navFileName != "" {
		navJSON, err := json.MarshalIndent(res.Nav, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(navFileName, navJSON, 0664); err != nil {
			return err
		}
	}

	return nil
}

// processWatch checks periodically if the input file has been modified, and
// if so renders it again. Useful during document editing.
func processWatch(inputFileName, outputFileName, navFileName string, sugar *zap.SugaredLogger) error {

	var old_timestamp time.Time

	for {

		info, err := os.Stat(inputFileName)
		if err != nil {
			return err
		}
		current_timestamp := info.ModTime()

		if old_timestamp.Before(current_timestamp) {
			old_timestamp = current_timestamp
			fmt.Println("************Processing*************")
			if err := renderFile(inputFileName, outputFileName, navFileName, sugar); err != nil {
				return err
			}
		}

		// Check again in one second
		time.Sleep(1 * time.Second)

	}
}

// process is the main entry point of the program
func process(c *cli.Context) error {

	var inputFileName = "index.tex"

	outputFileName := c.String("output")
	navFileName := c.String("nav")
	dryrun := c.Bool("dryrun")
	debug = c.Bool("debug")

	var z *zap.Logger
	var err error

	// Setup the logging system
	if debug {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}

	sugar := z.Sugar()
	defer sugar.Sync()

	if c.Args().Present() {
		inputFileName = c.Args().First()
	} else {
		fmt.Printf("no input file provided, using %q\n", inputFileName)
	}

	// Generate the output file name
	if len(outputFileName) == 0 {
		ext := path.Ext(inputFileName)
		if len(ext) == 0 {
			outputFileName = inputFileName + ".html"
		} else {
			outputFileName = strings.Replace(inputFileName, ext, ".html", 1)
		}
	}

	if c.Bool("watch") {
		return processWatch(inputFileName, outputFileName, navFileName, sugar)
	}

	if dryrun {
		fmt.Printf("dry run: processing %v without writing output\n", inputFileName)
		src, err := os.ReadFile(inputFileName)
		if err != nil {
			return err
		}
		p := tex.NewParser(sugar, fileResolver{baseDir: filepath.Dir(inputFileName)})
		if _, err := p.Render(inputFileName, src); err != nil {
			return err
		}
		if warns := p.Warnings(); warns != nil {
			fmt.Println("warnings:", warns)
		}
		return nil
	}

	fmt.Printf("processing %v and generating %v\n", inputFileName, outputFileName)
	return renderFile(inputFileName, outputFileName, navFileName, sugar)
}

func main() {

	app := &cli.App{
		Name:      "texpage",
		Version:   "v0.1",
		Compiled:  time.Now(),
		Usage:     "render a constrained LaTeX subset to a navigable HTML page",
		UsageText: "texpage [options] [INPUT_FILE] (default input file is index.tex)",
		Action:    process,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write html to `FILE` (default is input file name with extension .html)",
			},
			&cli.StringFlag{
				Name:  "nav",
				Usage: "write the navigation index as JSON to `FILE`",
			},
			&cli.BoolFlag{
				Name:    "dryrun",
				Aliases: []string{"n"},
				Usage:   "do not generate output file, just process input file",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "run in debug mode",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "watch the file for changes",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		panic(err)
	}

}
