package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type initCmd struct {
	cmd    *cobra.Command
	config string
}

func newInitCmd() *initCmd {
	root := &initCmd{}
	cmd := &cobra.Command{
		Use:           "init",
		Aliases:       []string{"i"},
		Short:         "Creates a sample rpminspect.yaml config file",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := os.WriteFile(root.config, []byte(example), 0o644); err != nil {
				return fmt.Errorf("failed to create example file: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&root.config, "config", "f", "rpminspect.yaml", "path to the to-be-created config file")

	root.cmd = cmd
	return root
}

const example = `# rpminspect example config file
#
# see the configuration section of the documentation for every recognized
# section and key.
common:
  workdir: /var/tmp/rpminspect
  profiledir: /usr/share/rpminspect/profiles

vendor:
  vendor_data_dir: /usr/share/rpminspect
  licensedb:
  - fedora.json
  favor_release: newest

koji:
  hub: https://koji.fedoraproject.org/kojihub
  download_ursine: https://kojipkgs.fedoraproject.org
  download_mbs: https://kojipkgs.fedoraproject.org/mbs

commands:
  diff: /usr/bin/diff
  diffstat: /usr/bin/diffstat
  msgunfmt: /usr/bin/msgunfmt
  desktop-file-validate: /usr/bin/desktop-file-validate
  annocheck: /usr/bin/annocheck
  abidiff: /usr/bin/abidiff
  kmidiff: /usr/bin/kmidiff
  udevadm: /usr/bin/udevadm

products:
  fc40: "\\.fc40$"
  fc41: "\\.fc41$"

inspections:
  addedfiles: "on"
  removedfiles: "on"
  changedfiles: "on"
  runpath: "on"
  capabilities: "on"
  license: "on"

ignore:
- "*/.build-id/*"

security_path_prefix:
- /etc/security

runpath:
  allowed_paths:
  - /usr/lib64
  - /usr/lib
  allowed_origin_paths:
  - ../lib64

unicode:
  forbidden_codepoints:
  - "202e"
  - "202d"
`
