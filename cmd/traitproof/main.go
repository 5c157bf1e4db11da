// traitproof 人格特质零知识证明命令行
package main

func main() {
	Execute()
}
