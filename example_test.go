package docportal_test

import (
	"context"
	"fmt"
	"log"

	"github.com/alnah/go-docportal"
)

func ExampleSite_Build() {
	cfg, err := docportal.LoadConfig("tool/docportal.yaml")
	if err != nil {
		log.Fatal(err)
	}

	site, err := docportal.New(cfg,
		docportal.WithPrecompile(true),
		docportal.WithEvents(func(ev docportal.Event) {
			if ev.Kind == docportal.SiteBuilt {
				fmt.Printf("%d pages built\n", ev.Pages)
			}
		}),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer site.Close()

	if _, err := site.Build(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func ExampleWithPDF() {
	cfg := docportal.DefaultConfig()
	cfg.PDF.Engine = docportal.EngineChrome

	// A nil engine is created from cfg.PDF.
	site, err := docportal.New(cfg, docportal.WithPDF("dist/manual.pdf", nil))
	if err != nil {
		log.Fatal(err)
	}
	defer site.Close()

	if _, err := site.Build(context.Background()); err != nil {
		log.Fatal(err)
	}
}
