package browser

import "runtime"

// FindChrome on the FS, returns the executable and the directory profiles go in
func FindChrome() (string, string) {
	switch runtime.GOOS {
	case "windows":
		return "C:\\Program Files (x86)\\Google\\Chrome\\Application\\chrome.exe", "C:\\Temp\\gcd\\"
	case "darwin":
		return "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome", "/tmp/gcd/"
	case "linux":
		return "/usr/bin/chromium-browser", "/tmp/gcd/"
	}
	return "", "tmp"
}
