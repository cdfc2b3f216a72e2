package ghostfat_test

import (
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/antonok-edm/stm32-usb/flash"
	"github.com/antonok-edm/stm32-usb/ghostfat"
)

func TestDosfsck(t *testing.T) {
	if _, err := exec.LookPath("dosfsck"); err != nil {
		t.Skipf("dosfsck not installed: %v", err)
	}

	dev := flash.NewMem(flashStart, flashEnd, pageSize)
	gf, err := ghostfat.New(dev, ghostfat.WithModTime(time.Now()))
	if err != nil {
		t.Fatal(err)
	}

	// Program a bit of firmware so CURRENT.UF2 exposes real content.
	if err := flash.WriteBytes(dev, flashStart, make([]byte, 1024)); err != nil {
		t.Fatal(err)
	}

	tmp, err := os.CreateTemp("", "ghostfat")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmp.Name())

	if err := gf.WriteImage(tmp); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command("dosfsck", "-v", "-n", tmp.Name())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
}
