package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
	"github.com/alexisbeaulieu97/buildcore/internal/sdkresolver"
)

func cmdContext(cmd *cobra.Command) context.Context {
	if cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// demoManifest is a small, built-in resolver manifest document (spec §4.3
// step 1) standing in for the on-disk manifest a real host would ship,
// parsed with gopkg.in/yaml.v3 via sdkresolver.NewYAMLManifestLoader.
const demoManifest = `
deploymentStyle: framework
resolvers:
  - name: VendoredSdkResolver
    priority: 10
  - name: NuGetSdkResolver
    priority: 20
    pattern: "^Contoso\\."
`

type vendoredResolver struct{}

func (vendoredResolver) Name() string { return "VendoredSdkResolver" }

func (vendoredResolver) Resolve(_ context.Context, _ sdkresolver.Context, ref buildmodel.SdkReference) (*buildmodel.SdkResult, error) {
	if ref.Name == "Microsoft.NET.Sdk" {
		return buildmodel.NewSdkSuccess("/usr/local/share/sdks/Microsoft.NET.Sdk", "8.0.100"), nil
	}
	return nil, nil
}

type nugetResolver struct{}

func (nugetResolver) Name() string { return "NuGetSdkResolver" }

func (nugetResolver) Resolve(_ context.Context, _ sdkresolver.Context, ref buildmodel.SdkReference) (*buildmodel.SdkResult, error) {
	return buildmodel.NewSdkSuccess("/home/demo/.nuget/sdks/"+ref.Name, "1.2.3"), nil
}

func newSdkCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "sdk", Short: "Inspect the SDK Resolver Service"}
	cmd.AddCommand(newSdkResolveCmd())
	return cmd
}

func newSdkResolveCmd() *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "resolve <name>",
		Short: "Run the demo resolver chain for an SDK name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := sdkresolver.NewYAMLManifestLoader([]byte(demoManifest), func(name, _ string) (sdkresolver.Resolver, error) {
				switch name {
				case "VendoredSdkResolver":
					return vendoredResolver{}, nil
				case "NuGetSdkResolver":
					return nugetResolver{}, nil
				default:
					return nil, fmt.Errorf("no resolver registered for manifest entry %q", name)
				}
			}, nil)
			if err != nil {
				return err
			}

			service := sdkresolver.NewCaching(sdkresolver.New(loader))
			ref := buildmodel.SdkReference{Name: args[0], ReferencedVersion: version}

			res, err := service.Resolve(cmdContext(cmd), sdkresolver.InvalidSubmissionID, ref, sdkresolver.Context{}, true)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "resolved %q -> %s (version %s)\n", ref.Name, res.Path, res.Version)
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "referenced-version", "", "the version referenced by the project, used for the version-mismatch warning")

	return cmd
}
