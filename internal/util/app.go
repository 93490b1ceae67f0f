package util

func GetAppName() string {
	return "EduChain"
}
