package deps

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/nexuslabs/nexus/internal/style"
)

// Installer installs missing tools through the platform's package manager:
// apt-get or yum on Linux, brew on macOS, choco on Windows. When no manager
// is available it prints manual instructions and fails.
type Installer struct {
	goos     string
	lookPath func(string) (string, error)
	run      func(argv []string) error
	out      io.Writer
}

// NewInstaller creates an installer for the current platform.
func NewInstaller() *Installer {
	return &Installer{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run:      runInteractive,
		out:      os.Stdout,
	}
}

func runInteractive(argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Install installs the given tools. A nil or empty list is a no-op. Any
// failure (no package manager, install command error) wraps
// ErrDependencyMissing.
func (i *Installer) Install(missing []Tool) error {
	if len(missing) == 0 {
		return nil
	}

	names := make([]string, len(missing))
	pkgs := make([]string, len(missing))
	for idx, tool := range missing {
		names[idx] = tool.Name
		pkgs[idx] = tool.Package
	}
	style.PrintWarning("installing missing dependencies: %v", names)

	var err error
	switch i.goos {
	case "linux":
		err = i.installLinux(pkgs)
	case "darwin":
		err = i.installDarwin(pkgs)
	case "windows":
		err = i.installWindows(pkgs)
	default:
		err = fmt.Errorf("no package manager support on %s", i.goos)
	}
	if err != nil {
		i.printManual(missing)
		return fmt.Errorf("%w: %v", ErrDependencyMissing, err)
	}
	return nil
}

func (i *Installer) installLinux(pkgs []string) error {
	if _, err := i.lookPath("apt-get"); err == nil {
		if err := i.run([]string{"sudo", "apt-get", "update"}); err != nil {
			return err
		}
		return i.run(append([]string{"sudo", "apt-get", "install", "-y"}, pkgs...))
	}
	if _, err := i.lookPath("yum"); err == nil {
		return i.run(append([]string{"sudo", "yum", "install", "-y"}, pkgs...))
	}
	return fmt.Errorf("neither apt-get nor yum found")
}

func (i *Installer) installDarwin(pkgs []string) error {
	if _, err := i.lookPath("brew"); err != nil {
		fmt.Fprintln(i.out, "Homebrew not found. Please install it first:")
		fmt.Fprintln(i.out, "  https://brew.sh")
		return fmt.Errorf("brew not found")
	}
	for _, pkg := range pkgs {
		if err := i.run([]string{"brew", "install", pkg}); err != nil {
			return err
		}
	}
	return nil
}

func (i *Installer) installWindows(pkgs []string) error {
	if _, err := i.lookPath("choco"); err != nil {
		fmt.Fprintln(i.out, "Chocolatey not found. Please install it first:")
		fmt.Fprintln(i.out, "  https://chocolatey.org/install")
		return fmt.Errorf("choco not found")
	}
	for _, pkg := range pkgs {
		if err := i.run([]string{"choco", "install", "-y", pkg}); err != nil {
			return err
		}
	}
	return nil
}

func (i *Installer) printManual(missing []Tool) {
	fmt.Fprintln(i.out, "Please install these dependencies manually:")
	for _, tool := range missing {
		if tool.Name == "jq" {
			fmt.Fprintf(i.out, "  - jq: %s\n", JqInstallURL)
			continue
		}
		fmt.Fprintf(i.out, "  - %s\n", tool.Package)
	}
}
